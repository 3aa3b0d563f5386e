package cli

import (
	"fmt"
	"io"

	pb "github.com/cheggaaa/pb/v3"

	"github.com/haskel/cellbench/internal/evaluation"
)

const modelBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{etime . }}{{with string . "suffix"}} {{.}}{{end}}`

// progressObserver drives a terminal progress bar from driver callbacks.
type progressObserver struct {
	out io.Writer
	bar *pb.ProgressBar
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out}
}

func (p *progressObserver) ModelStarted(name string, index, total int) {
	if p.bar == nil {
		p.bar = modelBar.New(total)
		p.bar.SetWriter(p.out)
		p.bar.Start()
	}
	p.bar.Set("prefix", fmt.Sprintf("training %s:", name))
}

func (p *progressObserver) ModelFinished(rec evaluation.Record) {
	if p.bar == nil {
		return
	}
	if rec.Failed() {
		p.bar.Set("suffix", rec.Name+" failed")
	} else {
		p.bar.Set("suffix", fmt.Sprintf("%s acc=%.3f", rec.Name, rec.Accuracy))
	}
	p.bar.Increment()
}

// Finish stops the bar if one was started.
func (p *progressObserver) Finish() {
	if p.bar != nil {
		p.bar.Set("prefix", "done.")
		p.bar.Finish()
	}
}
