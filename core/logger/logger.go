package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) charmLevel() log.Level {
	switch l {
	case DEBUG:
		return log.DebugLevel
	case INFO:
		return log.InfoLevel
	case WARN:
		return log.WarnLevel
	case ERROR:
		return log.ErrorLevel
	default:
		return log.FatalLevel
	}
}

type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (mw *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range mw.writers {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (mw *MultiWriter) Add(writer io.Writer) {
	mw.writers = append(mw.writers, writer)
}

// ColoredLogger routes DEBUG..WARN to out and ERROR..FATAL to errOut.
type ColoredLogger struct {
	verbose bool
	mu      sync.RWMutex
	out     io.Writer
	errOut  io.Writer
	std     *log.Logger
	errs    *log.Logger
}

var globalLogger *ColoredLogger

func init() {
	globalLogger = &ColoredLogger{}
	globalLogger.reset(os.Stdout, os.Stdout)
}

func newCharmLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "06-01-02 15:04:05",
		Level:           log.DebugLevel,
	})
	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = styles.Levels[log.DebugLevel].Foreground(lipgloss.Color("8"))
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(lipgloss.Color("4"))
	styles.Levels[log.FatalLevel] = styles.Levels[log.FatalLevel].Foreground(lipgloss.Color("5"))
	l.SetStyles(styles)
	return l
}

func (cl *ColoredLogger) reset(out, errOut io.Writer) {
	cl.out = out
	cl.errOut = errOut
	cl.std = newCharmLogger(out)
	cl.errs = newCharmLogger(errOut)
}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
}

func IsVerbose() bool {
	globalLogger.mu.RLock()
	defer globalLogger.mu.RUnlock()
	return globalLogger.verbose
}

func SetWriterForAll(writer io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.reset(writer, writer)
}

func AddWriterForAll(writer io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	out := appendWriter(globalLogger.out, writer)
	errOut := out
	if globalLogger.errOut != globalLogger.out {
		errOut = appendWriter(globalLogger.errOut, writer)
	}
	globalLogger.reset(out, errOut)
}

func appendWriter(current, writer io.Writer) io.Writer {
	if mw, ok := current.(*MultiWriter); ok {
		mw.Add(writer)
		return mw
	}
	return NewMultiWriter(current, writer)
}

func SetErrorWriter() {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.reset(globalLogger.out, os.Stderr)
}

// Writer returns the writer INFO level messages go to.
func Writer() io.Writer {
	globalLogger.mu.RLock()
	defer globalLogger.mu.RUnlock()
	return globalLogger.out
}

func (cl *ColoredLogger) log(level LogLevel, format string, args ...interface{}) {
	cl.mu.RLock()
	if level == DEBUG && !cl.verbose {
		cl.mu.RUnlock()
		return
	}

	l := cl.std
	if level >= ERROR {
		l = cl.errs
	}
	cl.mu.RUnlock()

	l.Logf(level.charmLevel(), format, args...)
	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	globalLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	globalLogger.log(FATAL, format, args...)
}

