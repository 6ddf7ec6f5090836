package ui

// Scripted answers prompts from a pre-loaded list and records everything
// it was asked to show. Used by flow tests and headless emulator runs.
type Scripted struct {
	// Answers are consumed one per prompt. When exhausted, DefaultAnswer
	// is used.
	Answers       []bool
	DefaultAnswer bool

	// Transcript records each prompt in display order.
	Transcript []Prompt
}

type PromptKind int

const (
	PromptConfirm PromptKind = iota + 1
	PromptScroll
	PromptNotice
)

type Prompt struct {
	Kind  PromptKind
	Title string
	Body  string
}

func NewScripted(answers ...bool) *Scripted {
	return &Scripted{Answers: answers, DefaultAnswer: true}
}

func (s *Scripted) Confirm(msg string) (bool, error) {
	s.Transcript = append(s.Transcript, Prompt{Kind: PromptConfirm, Body: msg})
	return s.next(), nil
}

func (s *Scripted) ScrollPage(title, body string) (bool, error) {
	s.Transcript = append(s.Transcript, Prompt{Kind: PromptScroll, Title: title, Body: body})
	return s.next(), nil
}

func (s *Scripted) ShowNotice(msg string) {
	s.Transcript = append(s.Transcript, Prompt{Kind: PromptNotice, Body: msg})
}

func (s *Scripted) next() bool {
	if len(s.Answers) == 0 {
		return s.DefaultAnswer
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}
