package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Terminal renders prompts on stdio. It stands in for the device screen
// and buttons when running the emulator interactively.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Confirm(msg string) (bool, error) {
	fmt.Fprintf(t.out, "\n%s\n", msg)
	return t.readAccept()
}

func (t *Terminal) ScrollPage(title, body string) (bool, error) {
	fmt.Fprintf(t.out, "\n== %s ==\n%s\n", title, body)
	return t.readAccept()
}

func (t *Terminal) ShowNotice(msg string) {
	fmt.Fprintf(t.out, "\n[notice] %s\n", msg)
}

func (t *Terminal) readAccept() (bool, error) {
	fmt.Fprint(t.out, "accept? [y/N]: ")
	line, err := t.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
