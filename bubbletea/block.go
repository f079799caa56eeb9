package bubbletea

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/enciclo/control"
	"github.com/enciclo/control/goldmark"
)

// Block is one entry of the chat transcript. View takes the width so the
// screen controls layout and blocks are testable in isolation.
type Block interface {
	View(width int) string
}

var (
	_ Block = (*QuestionBlock)(nil)
	_ Block = (*AnswerBlock)(nil)
	_ Block = (*ErrorBlock)(nil)
)

// QuestionBlock renders a question with a "> " prefix.
type QuestionBlock struct {
	text   string
	styles Styles
}

// NewQuestionBlock creates a QuestionBlock.
func NewQuestionBlock(text string, styles Styles) *QuestionBlock {
	return &QuestionBlock{text: text, styles: styles}
}

func (b *QuestionBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.styles.Prompt.Render("> ") + b.text)
}

// AnswerBlock renders a markdown answer. Renders are cached per width.
type AnswerBlock struct {
	text    string
	theme   control.Theme
	byWidth map[int]string
}

// NewAnswerBlock creates an AnswerBlock.
func NewAnswerBlock(text string, theme control.Theme) *AnswerBlock {
	return &AnswerBlock{text: text, theme: theme, byWidth: make(map[int]string)}
}

func (b *AnswerBlock) View(width int) string {
	if out, ok := b.byWidth[width]; ok {
		return out
	}
	out := goldmark.Render(b.text, width, b.theme)
	b.byWidth[width] = out
	return out
}

// ErrorBlock renders a failed question.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.styles.Error.Render(fmt.Sprintf("Error: %v", b.err)))
}
