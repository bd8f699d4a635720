package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tone selects how a console line is emphasised.
type Tone int

// Supported tones.
const (
	TonePlain Tone = iota
	ToneSuccess
	ToneNotice
	ToneFailure
)

const (
	successColorConstant = lipgloss.Color("10")
	noticeColorConstant  = lipgloss.Color("14")
	failureColorConstant = lipgloss.Color("9")
	lineTemplateConstant = "%s\n"
)

type flusher interface {
	Flush() error
}

// ConsoleReporter writes one line per message. Colour is only emitted when the
// writer is a terminal that supports it.
type ConsoleReporter struct {
	mutex  sync.Mutex
	writer io.Writer
	styles map[Tone]lipgloss.Style
}

// NewConsoleReporter constructs a reporter writing to writer.
func NewConsoleReporter(writer io.Writer) *ConsoleReporter {
	if writer == nil {
		writer = io.Discard
	}
	renderer := lipgloss.NewRenderer(writer)
	return &ConsoleReporter{
		writer: writer,
		styles: map[Tone]lipgloss.Style{
			TonePlain:   renderer.NewStyle(),
			ToneSuccess: renderer.NewStyle().Foreground(successColorConstant),
			ToneNotice:  renderer.NewStyle().Foreground(noticeColorConstant),
			ToneFailure: renderer.NewStyle().Foreground(failureColorConstant),
		},
	}
}

// Print writes message in the given tone followed by a newline.
func (reporter *ConsoleReporter) Print(tone Tone, message string) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	style, known := reporter.styles[tone]
	if !known {
		style = reporter.styles[TonePlain]
	}
	fmt.Fprintf(reporter.writer, lineTemplateConstant, style.Render(message))
	if flushingWriter, canFlush := reporter.writer.(flusher); canFlush {
		_ = flushingWriter.Flush()
	}
}
