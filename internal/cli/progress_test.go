package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shinji-kodama/gitdup/internal/model"
)

// TestProgressPrinter_DescribesEveryKind makes sure no event kind falls
// through to the raw kind name.
func TestProgressPrinter_DescribesEveryKind(t *testing.T) {
	p := newProgressPrinter(&bytes.Buffer{})

	for _, kind := range model.AllEventKinds() {
		e := model.Event{Kind: kind, Destination: "/d", Branch: "b", PR: 1, Remote: "origin", Manager: "npm", Reason: "r"}
		assert.NotEqual(t, string(kind), p.describe(e), "kind %s has no description", kind)
	}
}

// TestProgressPrinter_Handle checks the rendered lines. Output to a buffer
// carries no ANSI styling.
func TestProgressPrinter_Handle(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.Handle(model.Event{Kind: model.EventPRStart, Destination: "/d", PR: 42, Remote: "upstream", Branch: "pr-42"})
	p.Handle(model.Event{Kind: model.EventInstallSkip, Destination: "/d", Reason: model.SkipReasonInstallDisabled})
	p.Handle(model.Event{Kind: model.EventDone, Destination: "/d"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"→ Fetching pull request #42 from upstream",
		"- Skipping dependency install: install disabled by option",
		"✔ Duplicate ready at /d",
	}, lines)
}
