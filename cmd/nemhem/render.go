package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/24kshah/nemhem-ai/config"
	"github.com/24kshah/nemhem-ai/services/chat"
	"github.com/24kshah/nemhem-ai/services/dispatch"
	"github.com/24kshah/nemhem-ai/services/routing"
)

type printer struct {
	w      io.Writer
	header *color.Color
	dim    *color.Color
	ok     *color.Color
	bad    *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:      w,
		header: color.New(color.FgCyan, color.Bold),
		dim:    color.New(color.FgHiBlack),
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{p.header, p.dim, p.ok, p.bad} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) turn(t *chat.Turn) {
	for _, b := range t.Enrichment {
		c := p.dim
		if b.Failed {
			c = p.bad
		}
		c.Fprintln(p.w, b.Content)
		fmt.Fprintln(p.w)
	}

	if len(t.Steps) > 0 {
		for _, s := range t.Steps {
			p.step(s)
		}
		fmt.Fprintln(p.w, strings.Repeat("─", 60))
	}

	if t.OK() {
		fmt.Fprintln(p.w, t.Reply)
	} else {
		p.failure(t.Reply)
	}
	p.dim.Fprintf(p.w, "%s · %s · %s\n", t.Result.Provider, t.Result.Model, t.Latency.Round(time.Millisecond))
}

func (p *printer) step(s dispatch.Step) {
	mark := p.ok.Sprint("✓")
	if !s.Result.OK() {
		mark = p.bad.Sprint("✗")
	}
	p.header.Fprintf(p.w, "Step %d ", s.Index)
	fmt.Fprintf(p.w, "%s %s\n", mark, s.Selector)
	fmt.Fprintln(p.w, s.Result.Render())
	fmt.Fprintln(p.w)
}

func (p *printer) failure(msg string) {
	p.bad.Fprintln(p.w, msg)
}

func (p *printer) route(m config.ModelOption, r routing.Route) {
	status := p.ok.Sprint("●")
	if !r.Profile.Configured() {
		status = p.bad.Sprint("○")
	}
	fmt.Fprintf(p.w, "%s %-55s → %s", status, m.Label, r.Profile.Label())
	if r.Fallback {
		p.dim.Fprint(p.w, " (fallback)")
	}
	fmt.Fprintln(p.w)
}
