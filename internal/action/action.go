package action

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger writing workflow commands when running inside
// GitHub Actions and timestamped text otherwise.
func NewLogger(out io.Writer, inActions bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if inActions {
		// the runner only shows debug messages when step debugging is enabled
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&Formatter{})
		return log
	}
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}

// Formatter renders log entries as workflow commands.
type Formatter struct{}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	msg := entry.Message
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg += fmt.Sprintf(" %s=%v", k, entry.Data[k])
		}
	}
	switch entry.Level {
	case logrus.TraceLevel, logrus.DebugLevel:
		b.WriteString("::debug::" + escapeData(msg))
	case logrus.WarnLevel:
		b.WriteString("::warning::" + escapeData(msg))
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		b.WriteString("::error::" + escapeData(msg))
	default:
		b.WriteString(msg)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Commands publishes results to the runner, either through the files named
// by GITHUB_PATH and GITHUB_OUTPUT or as workflow commands on out.
type Commands struct {
	out        io.Writer
	pathFile   string
	outputFile string
}

func NewCommands(out io.Writer, pathFile, outputFile string) *Commands {
	return &Commands{
		out:        out,
		pathFile:   pathFile,
		outputFile: outputFile,
	}
}

func appendToFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// AddPath prepends dir to the PATH of this process and of subsequent steps.
func (c *Commands) AddPath(dir string) error {
	if c.pathFile != "" {
		if err := appendToFile(c.pathFile, dir+"\n"); err != nil {
			return fmt.Errorf("failed to add %s to the path: %w", dir, err)
		}
	} else {
		fmt.Fprintf(c.out, "::add-path::%s\n", escapeData(dir))
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func newDelimiter() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ghadelimiter_" + hex.EncodeToString(buf), nil
}

// SetOutput sets the step output name to value.
func (c *Commands) SetOutput(name, value string) error {
	if c.outputFile == "" {
		fmt.Fprintf(c.out, "::set-output name=%s::%s\n", name, escapeData(value))
		return nil
	}
	delimiter, err := newDelimiter()
	if err != nil {
		return err
	}
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("unexpected input: output value contains the delimiter %s", delimiter)
	}
	if err := appendToFile(c.outputFile, fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)); err != nil {
		return fmt.Errorf("failed to set output %s: %w", name, err)
	}
	return nil
}
