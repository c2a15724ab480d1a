package persona

import (
	"fmt"
	"strings"
)

// Persona holds the identity the agent speaks as. All fields are fixed at
// construction; the summary and profile are opaque text supplied by the
// caller (see internal/profile for the file-based loader).
type Persona struct {
	name    string
	summary string
	profile string
}

// New creates a persona from an identity name, a short background summary,
// and the full profile text.
func New(name, summary, profile string) *Persona {
	return &Persona{
		name:    name,
		summary: summary,
		profile: profile,
	}
}

// Name returns the identity name
func (p *Persona) Name() string {
	return p.name
}

// SystemInstruction renders the system message that grounds every
// conversation. Deterministic: the same persona always yields the same
// instruction.
func (p *Persona) SystemInstruction() string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are acting as %s. You are answering questions on %s's website, "+
		"particularly questions related to %s's career, background, skills and experience. ",
		p.name, p.name, p.name)
	fmt.Fprintf(&b, "Your responsibility is to represent %s for interactions on the website as faithfully as possible. ", p.name)
	fmt.Fprintf(&b, "You are given a summary of %s's background and profile which you can use to answer questions. ", p.name)
	b.WriteString("Be professional and engaging, as if talking to a potential client or future employer who came across the website. ")
	b.WriteString("If you don't know the answer to any question, use your record_unknown_question tool to record the question. ")
	b.WriteString("If the user is engaging in discussion, try to steer them towards getting in touch via email; ")
	b.WriteString("ask for their email and record it using your record_user_details tool.\n\n")

	fmt.Fprintf(&b, "## Summary:\n%s\n\n## Profile:\n%s\n\n", p.summary, p.profile)
	fmt.Fprintf(&b, "With this context, please chat with the user, always staying in character as %s.", p.name)

	return b.String()
}
