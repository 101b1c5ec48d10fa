// Package ui is the tview front end for the chat session: a conversation
// view, a small command box and an optional debug console. The bot runs
// in the background and talks to the user through this screen.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/9mada4/VoiceChatBot/internal/config"
	"github.com/9mada4/VoiceChatBot/internal/logger"
)

var app *tview.Application

var (
	debugConsole *tview.TextView
	textView     *tview.TextView
	textArea     *tview.TextArea
	localLogger  *logger.Logger
	debugShown   bool

	// answers carries /yes and /no to whoever is waiting on Answer.
	answers = make(chan bool)

	speakFunc func(string)
	quitFunc  func()
)

func Init() {
	app = tview.NewApplication()
	app.EnablePaste(true)
	app.EnableMouse(true)

	debugConsole = initDebugConsole()

	textView = initChatViewer()
	textArea = initChatInput()
}

// SetSpeaker routes free text typed into the question box to the voice.
func SetSpeaker(fn func(string)) {
	speakFunc = fn
}

// SetQuit runs before the application stops on /bye.
func SetQuit(fn func()) {
	quitFunc = fn
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversation").SetBorder(true)
	textView.SetScrollable(true)
	textView.ScrollToEnd()
	return textView
}

func initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea()
	textArea.SetTitle("Commands: /yes /no /help").SetBorder(true)
	return textArea
}

func initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// Run builds the layout and blocks until the application stops.
func Run() {
	localLogger = logger.NewLogger("views")

	textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			app.SetFocus(textArea)
		}
		return event
	})

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(textArea, 8, 2, true)
	mainFlex := tview.NewFlex().
		AddItem(subFlex, 0, 2, false)

	if config.Dev {
		mainFlex.AddItem(debugConsole, 0, 1, false)
		debugShown = true
	}

	setInputCapture(mainFlex)

	if err := app.SetRoot(mainFlex, true).SetFocus(textArea).Run(); err != nil {
		panic(err)
	}
}

// Stop ends the application loop. Safe to call from the bot goroutine.
func Stop() {
	app.Stop()
}

func setInputCapture(mainFlex *tview.Flex) {
	textArea.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			if textView.GetText(false) != "" {
				app.SetFocus(textView)
			}
		case tcell.KeyEnter:
			content := strings.TrimSpace(textArea.GetText())
			if content == "" {
				return nil
			}
			textArea.SetText("", true)

			switch content {
			case "/help":
				listHelp()
			case "/bye":
				quitApp()
			case "/debug":
				toggleDebugConsole(mainFlex)
			case "/yes":
				submitAnswer(true)
			case "/no":
				submitAnswer(false)
			default:
				// Anything else is read aloud, handy for talking back
				// without the microphone.
				fmt.Fprintf(textView, "[red::]You:[-] %s\n", content)
				if speakFunc != nil {
					go speakFunc(content)
				}
			}
			return nil
		}
		return event
	})
}

func submitAnswer(v bool) {
	select {
	case answers <- v:
	default:
		fmt.Fprintf(textView, "\n[yellow]Nothing is waiting for a yes/no right now.[-]\n")
	}
}

func toggleDebugConsole(mainFlex *tview.Flex) {
	go func() {
		if !debugShown {
			app.QueueUpdateDraw(func() {
				mainFlex.AddItem(debugConsole, 0, 1, false)
				fmt.Fprintf(textView, "\nDebug console enabled\n")
			})
		} else {
			app.QueueUpdateDraw(func() {
				mainFlex.RemoveItem(debugConsole)
				fmt.Fprintf(textView, "\nDebug console disabled\n")
			})
		}
		debugShown = !debugShown
	}()
}

func quitApp() {
	fmt.Fprintf(textView, "Bye bye\n")
	if quitFunc != nil {
		quitFunc()
	}
	localLogger.Close()
	app.Stop()
}

func listHelp() {
	fmt.Fprintf(textView, "[green::]Commands:[-]\n")
	fmt.Fprintf(textView, "- /help: Display this help message\n")
	fmt.Fprintf(textView, "- /bye: Exit the application\n")
	fmt.Fprintf(textView, "- /debug: Toggle the debug console\n")
	fmt.Fprintf(textView, "- /yes, /no: Answer a pending confirmation\n")
	fmt.Fprintf(textView, "- anything else: read the text aloud\n\n")
}

func GetDebugConsole() (*tview.TextView, error) {
	if debugConsole == nil {
		return nil, errors.New("debug console not initialized")
	}
	return debugConsole, nil
}

// BotConsole adapts the conversation view to the bot's console.
type BotConsole struct{}

func Console() *BotConsole {
	return &BotConsole{}
}

func (*BotConsole) Write(p []byte) (int, error) {
	return textView.Write(p)
}

func (*BotConsole) Answer(ctx context.Context) (bool, error) {
	fmt.Fprintf(textView, "\n[yellow]Answer with /yes or /no.[-]\n")
	select {
	case v := <-answers:
		return v, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
