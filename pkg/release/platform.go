package release

import "runtime"

// Platform and architecture names follow the naming used by the release
// manifest (darwin/linux/win32, x64/arm64).
const (
	PlatformDarwin  = "darwin"
	PlatformLinux   = "linux"
	PlatformWindows = "win32"

	ArchX64   = "x64"
	ArchX86   = "ia32"
	ArchArm64 = "arm64"
	ArchArm   = "arm"
)

var platforms = map[string]string{
	"windows": PlatformWindows,
}

var archs = map[string]string{
	"amd64": ArchX64,
	"386":   ArchX86,
}

func PlatformFromGOOS(goos string) string {
	if p, ok := platforms[goos]; ok {
		return p
	}
	return goos
}

func ArchFromGOARCH(goarch string) string {
	if a, ok := archs[goarch]; ok {
		return a
	}
	return goarch
}

func CurrentPlatform() string {
	return PlatformFromGOOS(runtime.GOOS)
}

func CurrentArch() string {
	return ArchFromGOARCH(runtime.GOARCH)
}

func IsWindows(platform string) bool {
	return platform == PlatformWindows
}
