// Package ingest merges parsed messages into the newsletter collection.
// For each message it derives the record ID from the date and subject,
// skips IDs that already exist, and otherwise runs the content pipeline:
// extract → summarize → tag → append.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/letterpipe/core"
	"github.com/gaurav-prasanna/letterpipe/core/slug"
)

// ErrMissingSubject is returned for messages without a Subject header.
var ErrMissingSubject = errors.New("message has no Subject header")

// State is the outcome of processing one message.
type State int

const (
	Pending State = iota
	Skipped
	Added
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Skipped:
		return "skipped"
	case Added:
		return "added"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome describes what happened to a single message.
type Outcome struct {
	Name  string
	ID    string
	State State
	Err   error
}

// Report summarizes a run.
type Report struct {
	Added   []string
	Skipped []string
	Failed  []Outcome
}

// Total returns the number of messages seen.
func (r Report) Total() int {
	return len(r.Added) + len(r.Skipped) + len(r.Failed)
}

// Ingester wires the pipeline stages together.
type Ingester struct {
	Parser     core.MessageParser
	Dates      core.DateNormalizer
	Extractor  core.Extractor
	Summarizer core.Summarizer
	Tagger     core.Tagger

	logger *slog.Logger
}

// New creates an Ingester from its stages.
func New(
	parser core.MessageParser,
	dates core.DateNormalizer,
	extractor core.Extractor,
	summarizer core.Summarizer,
	tagger core.Tagger,
	logger *slog.Logger,
) *Ingester {
	return &Ingester{
		Parser:     parser,
		Dates:      dates,
		Extractor:  extractor,
		Summarizer: summarizer,
		Tagger:     tagger,
		logger:     core.ComponentLogger(logger, "ingest"),
	}
}

// Run loads the collection, processes every message from src in order and
// saves the whole collection once at the end. A store that cannot be
// loaded aborts the run; a bad message only fails itself.
func (in *Ingester) Run(ctx context.Context, src core.MessageSource, store core.CollectionStore) (Report, error) {
	coll, err := store.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("loading collection: %w", err)
	}

	msgs, err := src.List()
	if err != nil {
		return Report{}, fmt.Errorf("listing messages: %w", err)
	}

	report := in.Merge(coll, msgs)
	in.logger.Info("run complete",
		slog.Int("added", len(report.Added)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("total", coll.Len()),
	)

	if err := store.Save(ctx, coll); err != nil {
		return report, fmt.Errorf("saving collection: %w", err)
	}
	return report, nil
}

// Merge processes msgs in order against coll, appending new records.
func (in *Ingester) Merge(coll *core.Collection, msgs []core.RawMessage) Report {
	var report Report
	for _, raw := range msgs {
		out := in.processRaw(coll, raw)
		switch out.State {
		case Added:
			report.Added = append(report.Added, out.ID)
		case Skipped:
			report.Skipped = append(report.Skipped, out.ID)
		case Failed:
			report.Failed = append(report.Failed, out)
		}
	}
	return report
}

func (in *Ingester) processRaw(coll *core.Collection, raw core.RawMessage) Outcome {
	log := in.logger.With(slog.String("message", raw.Name))
	log.Debug("processing message")

	msg, err := in.parse(raw)
	if err != nil {
		log.Warn("skipping unreadable message", slog.Any("error", err))
		return Outcome{Name: raw.Name, State: Failed, Err: err}
	}
	for _, defect := range msg.Defects {
		log.Warn("damaged message, keeping what was decoded", slog.Any("error", defect))
	}

	out := in.Process(coll, msg)
	out.Name = raw.Name
	switch out.State {
	case Added:
		log.Info("added", slog.String("id", out.ID))
	case Skipped:
		log.Info("already exists, skipping", slog.String("id", out.ID))
	case Failed:
		log.Warn("skipping message", slog.String("id", out.ID), slog.Any("error", out.Err))
	}
	return out
}

func (in *Ingester) parse(raw core.RawMessage) (*core.Message, error) {
	if raw.Open == nil {
		return nil, fmt.Errorf("message %s has no content", raw.Name)
	}
	rc, err := raw.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", raw.Name, err)
	}
	defer rc.Close()

	msg, err := in.Parser.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", raw.Name, err)
	}
	return msg, nil
}

// Process merges one parsed message into coll. Identity is the computed ID
// alone: a second message with the same date and subject is skipped even if
// its body differs.
func (in *Ingester) Process(coll *core.Collection, msg *core.Message) Outcome {
	if !msg.HasSubject {
		return Outcome{State: Failed, Err: ErrMissingSubject}
	}

	date := in.Dates.Normalize(msg.Date)
	id := slug.ID(date, slug.Make(msg.Subject))

	if coll.Has(id) {
		return Outcome{ID: id, State: Skipped}
	}

	content, err := in.Extractor.Extract(msg)
	if err != nil {
		return Outcome{ID: id, State: Failed, Err: fmt.Errorf("extracting content: %w", err)}
	}

	rec := core.Record{
		ID:          id,
		Title:       msg.Subject,
		Date:        date,
		Summary:     in.Summarizer.Summarize(content),
		Tags:        in.Tagger.Tags(msg.Subject),
		ContentHTML: content,
	}
	coll.Append(rec)
	return Outcome{ID: id, State: Added}
}
