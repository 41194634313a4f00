package entity

type Flashcard struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CaseStudy is a practice scenario from the exam catalogue. Read-only.
type CaseStudy struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Topics      []string    `json:"topics"`
	Flashcards  []Flashcard `json:"flashcards"`
}

// Clone returns a deep copy of c.
func (c CaseStudy) Clone() CaseStudy {
	out := c
	if c.Topics != nil {
		out.Topics = append([]string(nil), c.Topics...)
	}
	if c.Flashcards != nil {
		out.Flashcards = append([]Flashcard(nil), c.Flashcards...)
	}
	return out
}
