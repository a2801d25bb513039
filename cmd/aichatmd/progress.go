package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// progressBar draws conversion progress on one terminal line.
type progressBar struct {
	w     io.Writer
	bar   progress.Model
	total int
	done  int
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) Start(total int) {
	p.total, p.done = total, 0
	p.draw()
}

func (p *progressBar) Advance() {
	p.done++
	// redraw at most ~50 times
	if p.total <= 50 || p.done%(p.total/50) == 0 || p.done == p.total {
		p.draw()
	}
}

func (p *progressBar) Finish() {
	if p.total == 0 {
		return
	}
	p.done = p.total
	p.draw()
	fmt.Fprintln(p.w)
}

func (p *progressBar) draw() {
	if p.total == 0 {
		return
	}
	pct := float64(p.done) / float64(p.total)
	fmt.Fprintf(p.w, "\r%s %d/%d", p.bar.ViewAs(pct), p.done, p.total)
}
