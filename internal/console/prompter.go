package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noah-isme/sma-gradebook/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook/pkg/errors"
)

// Prompter reads one line per field and re-prompts until the input is valid
// or cancelled. Only OK and Cancelled outcomes reach the caller.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	rules *Rules
	now   func() time.Time
}

// NewPrompter wires a prompter over in/out. rules and now default when nil.
func NewPrompter(in io.Reader, out io.Writer, rules *Rules, now func() time.Time) *Prompter {
	if rules == nil {
		rules = NewRules(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &Prompter{in: bufio.NewReader(in), out: out, rules: rules, now: now}
}

// Out exposes the console writer for banners and tables.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Println writes a line to the console.
func (p *Prompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Printf writes formatted text to the console.
func (p *Prompter) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Text asks for a free-text field.
func (p *Prompter) Text(prompt string) (Outcome[string], error) {
	return ask(p, prompt, p.rules.Text)
}

// StudentID asks for a student identifier.
func (p *Prompter) StudentID(prompt string) (Outcome[string], error) {
	return ask(p, prompt, p.rules.StudentID)
}

// WebPage asks for a web address.
func (p *Prompter) WebPage(prompt string) (Outcome[string], error) {
	return ask(p, prompt, p.rules.WebPage)
}

// PositiveInt asks for a whole number greater than zero.
func (p *Prompter) PositiveInt(prompt string) (Outcome[int], error) {
	return ask(p, prompt, p.rules.PositiveInt)
}

// Date asks for a past or present date.
func (p *Prompter) Date(prompt string) (Outcome[time.Time], error) {
	return ask(p, prompt, func(raw string) Outcome[time.Time] {
		return p.rules.Date(raw, p.now())
	})
}

// Confirm asks the review question.
func (p *Prompter) Confirm() (Outcome[bool], error) {
	return ask(p, MsgConfirm, p.rules.Confirmation)
}

// Grade asks for the letter grade of one course; cancel skips the course.
func (p *Prompter) Grade(courseName string) (Outcome[models.LetterGrade], error) {
	p.Printf("Enter the course grade for %s ('cancel' to skip):\n", courseName)
	return ask(p, ">> Grade ("+gradeChoices()+"):", p.rules.Grade)
}

func gradeChoices() string {
	codes := make([]string, len(models.LetterGrades))
	for i, g := range models.LetterGrades {
		codes[i] = string(g)
	}
	return strings.Join(codes, ", ")
}

func ask[T any](p *Prompter, prompt string, parse func(string) Outcome[T]) (Outcome[T], error) {
	for {
		p.Printf("%s ", prompt)
		line, err := p.readLine()
		if err != nil {
			return Outcome[T]{}, err
		}
		outcome := parse(line)
		if outcome.Kind == KindInvalid {
			p.Println(outcome.Reason)
			continue
		}
		return outcome, nil
	}
}

// readLine returns the next line without its terminator. Lines have no
// length limit; a final line without newline is still returned.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimRight(line, "\r"), nil
			}
			return "", appErrors.ErrInputClosed
		}
		return "", appErrors.Wrap(err, appErrors.ErrInputClosed.Code, "read input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
