package store

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/feedback"
	"github.com/JaimeStill/docsort/internal/learning"
	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/repository"
)

const recordColumns = `id, signal, scores, predicted, confidence, rule, weights_version, thresholds_version, created_at`

const feedbackColumns = `id, classification_id, corrected_class, user_confidence, reason, predicted, scores, created_at`

func recordArgs(r classifications.Record) ([]any, error) {
	signal, err := json.Marshal(r.Signal)
	if err != nil {
		return nil, fmt.Errorf("encode signal: %w", err)
	}
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return nil, fmt.Errorf("encode scores: %w", err)
	}
	return []any{
		r.ID,
		string(signal),
		string(scores),
		string(r.Predicted),
		r.Confidence,
		string(r.Rule),
		r.WeightsVersion,
		r.ThresholdsVersion,
		r.CreatedAt,
	}, nil
}

func scanRecord(s repository.Scanner) (classifications.Record, error) {
	var (
		r         classifications.Record
		signal    []byte
		scores    []byte
		predicted string
		rule      string
	)
	err := s.Scan(
		&r.ID, &signal, &scores, &predicted, &r.Confidence,
		&rule, &r.WeightsVersion, &r.ThresholdsVersion, &r.CreatedAt,
	)
	if err != nil {
		return r, err
	}

	if err := json.Unmarshal(signal, &r.Signal); err != nil {
		return r, fmt.Errorf("decode signal for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(scores, &r.Scores); err != nil {
		return r, fmt.Errorf("decode scores for %s: %w", r.ID, err)
	}
	if r.Predicted, err = scoring.ParseClass(predicted); err != nil {
		return r, fmt.Errorf("record %s: %w", r.ID, err)
	}
	r.Rule = scoring.Rule(rule)
	return r, nil
}

func feedbackArgs(e feedback.Entry) ([]any, error) {
	scores, err := json.Marshal(e.Scores)
	if err != nil {
		return nil, fmt.Errorf("encode scores: %w", err)
	}
	return []any{
		e.ID,
		e.ClassificationID,
		string(e.CorrectedClass),
		string(e.UserConfidence),
		e.Reason,
		string(e.Predicted),
		string(scores),
		e.CreatedAt,
	}, nil
}

func scanEntry(s repository.Scanner) (feedback.Entry, error) {
	var (
		e          feedback.Entry
		corrected  string
		confidence string
		predicted  string
		scores     []byte
	)
	err := s.Scan(
		&e.ID, &e.ClassificationID, &corrected, &confidence,
		&e.Reason, &predicted, &scores, &e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	if e.CorrectedClass, err = scoring.ParseClass(corrected); err != nil {
		return e, fmt.Errorf("feedback %s: %w", e.ID, err)
	}
	if e.Predicted, err = scoring.ParseClass(predicted); err != nil {
		return e, fmt.Errorf("feedback %s: %w", e.ID, err)
	}
	if e.UserConfidence, err = feedback.ParseConfidence(confidence); err != nil {
		return e, fmt.Errorf("feedback %s: %w", e.ID, err)
	}
	if err := json.Unmarshal(scores, &e.Scores); err != nil {
		return e, fmt.Errorf("decode scores for feedback %s: %w", e.ID, err)
	}
	return e, nil
}

func scanSnapshot(s repository.Scanner) (learning.Snapshot, error) {
	var (
		snap learning.Snapshot
		data []byte
	)
	if err := s.Scan(&data); err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode config snapshot: %w", err)
	}
	return snap, nil
}
