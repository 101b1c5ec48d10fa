// Package logger fans tagged log lines out to the dev debug console and
// an optional log file. Sub-loggers share one core; NewLogger copies are
// cheap and safe to make per package.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rivo/tview"
)

type Level int

const (
	Info Level = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	Level     Level
}

type Logger struct {
	view      *tview.TextView
	tag       string
	dev       bool
	logFile   *os.File
	logChan   chan Message
	closeChan chan struct{}
}

var (
	logManager *Logger
	once       sync.Once
)

// InitLogger sets up the shared core. view may be nil; dev output then
// falls back to the standard logger. Later calls are no-ops.
func InitLogger(dev bool, logPath string, view *tview.TextView) {
	once.Do(func() {
		logManager = &Logger{
			view:      view,
			dev:       dev,
			logChan:   make(chan Message, 100),
			closeChan: make(chan struct{}),
		}
		if logPath != "" {
			timestamp := time.Now().Format("20060102_150405")
			fileName := fmt.Sprintf("voicechatbot_%s.log", timestamp)
			filePath := filepath.Join(logPath, fileName)

			file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				log.Fatalf("Failed to open log file: %s", err)
			}
			logManager.logFile = file
		}

		go logManager.writeLogs()
	})
}

// NewLogger returns a tagged logger over the shared core. Before
// InitLogger runs, mostly in unit tests, the logger stays silent.
func NewLogger(tag string) *Logger {
	if logManager == nil {
		return &Logger{tag: tag}
	}
	return &Logger{
		view:      logManager.view,
		tag:       tag,
		dev:       logManager.dev,
		logFile:   logManager.logFile,
		logChan:   logManager.logChan,
		closeChan: logManager.closeChan,
	}
}

func (l *Logger) writeLogs() {
	for {
		select {
		case msg := <-l.logChan:
			l.writeFile(msg)
		case <-l.closeChan:
			// Drain what is queued, then stop.
			for {
				select {
				case msg := <-l.logChan:
					l.writeFile(msg)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) writeFile(msg Message) {
	if l.logFile == nil {
		return
	}
	line := fmt.Sprintf("%s [%s] %s: %s\n",
		msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Tag, msg.Level, msg.Message)
	l.logFile.WriteString(line)
}

func (l *Logger) log(level Level, v ...interface{}) {
	message := fmt.Sprint(v...)
	if l.dev {
		if l.view != nil {
			var color string
			switch level {
			case Error, Fatal:
				color = "red"
			case Warn:
				color = "yellow"
			default:
				color = "green"
			}
			fmt.Fprintf(l.view, "[%s]%s (%s): %s[-]\n", color, level, l.tag, message)
		} else {
			switch level {
			case Fatal:
				log.Fatal(v...)
			default:
				log.Println(v...)
			}
		}
	}

	if l.logFile != nil {
		l.logChan <- Message{
			Timestamp: time.Now(),
			Tag:       l.tag,
			Message:   message,
			Level:     level,
		}
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, v...)
}

// Fatal logs and terminates the process.
func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, v...)
	os.Exit(1)
}

// Close stops the writer after draining queued lines and closes the file.
func (l *Logger) Close() {
	if l.closeChan != nil {
		close(l.closeChan)
	}
	if l.logFile != nil {
		l.logFile.Close()
	}
}

func (lv Level) String() string {
	switch lv {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
