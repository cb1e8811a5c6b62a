package console

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// Sink writes command results either as terminal-rendered markdown or as
// one JSON document per call.
type Sink struct {
	w          io.Writer
	structured bool
	render     func(md string) (string, error)
}

// NewSink returns a human sink when structured is false.
func NewSink(w io.Writer, structured bool) port.Sink {
	return &Sink{w: w, structured: structured, render: glamourRender}
}

func glamourRender(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func (s *Sink) markdown(md string) error {
	out, err := s.render(md)
	if err != nil {
		// raw markdown is still readable
		log.Debug().Err(err).Msg("markdown rendering failed")
		out = md
	}
	_, err = io.WriteString(s.w, out)
	return err
}

func (s *Sink) json(v any) error {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Sink) Assets(assets []model.Asset) error {
	if s.structured {
		return s.json(nonNil(assets))
	}
	return s.markdown(assetsMarkdown(assets))
}

func (s *Sink) Transactions(txs []model.Transaction) error {
	if s.structured {
		return s.json(nonNil(txs))
	}
	return s.markdown(transactionsMarkdown(txs))
}

func (s *Sink) Positions(user string, positions []model.Position) error {
	if s.structured {
		return s.json(struct {
			User      string           `json:"user"`
			Positions []model.Position `json:"positions"`
		}{user, nonNil(positions)})
	}
	return s.markdown(positionsMarkdown(user, positions))
}

func (s *Sink) Summary(sum model.Summary) error {
	if s.structured {
		sum.Allocations = nonNil(sum.Allocations)
		return s.json(sum)
	}
	return s.markdown(summaryMarkdown(sum))
}

func (s *Sink) Created(kind string, id int64) error {
	if s.structured {
		return s.json(struct {
			Kind string `json:"kind"`
			ID   int64  `json:"id"`
		}{kind, id})
	}
	_, err := fmt.Fprintf(s.w, "created %s %d\n", kind, id)
	return err
}

func (s *Sink) Done(msg string) error {
	if s.structured {
		return s.json(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{"ok", msg})
	}
	_, err := fmt.Fprintln(s.w, msg)
	return err
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
