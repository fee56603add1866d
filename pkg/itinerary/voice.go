package itinerary

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yair/localgeo/pkg/domain"
)

const defaultAudioType = "audio/webm"

type Recording struct {
	Data        []byte
	ContentType string
}

// Recorder is an audio capture device. Start acquires it, Stop ends the capture
// and Release frees it. Release must tolerate being called after a failed Start.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (Recording, error)
	Release()
}

type VoiceNotes struct {
	api    domain.VoiceNoteAPI
	tokens TokenSource
	logger zerolog.Logger
	newID  func() string
}

func NewVoiceNotes(api domain.VoiceNoteAPI, tokens TokenSource, logger zerolog.Logger) *VoiceNotes {
	return &VoiceNotes{api: api, tokens: tokens, logger: logger, newID: uuid.NewString}
}

func (v *VoiceNotes) token(op string) (string, error) {
	token := v.tokens.Token()
	if token == "" {
		return "", fmt.Errorf("%s: %w", op, domain.ErrAuthRequired)
	}
	return token, nil
}

func (v *VoiceNotes) List(ctx context.Context) ([]domain.VoiceNote, error) {
	token, err := v.token("list voice notes")
	if err != nil {
		return nil, err
	}
	return v.api.ListVoiceNotes(ctx, token)
}

func (v *VoiceNotes) Delete(ctx context.Context, id string) error {
	token, err := v.token("delete voice note")
	if err != nil {
		return err
	}
	return v.api.DeleteVoiceNote(ctx, token, id)
}

// Take is a capture in progress. Exactly one of Finish or Abort should be
// called; either way the recorder is released.
type Take struct {
	notes   *VoiceNotes
	rec     Recorder
	token   string
	release sync.Once
}

// Start acquires rec for a new voice note.
func (v *VoiceNotes) Start(ctx context.Context, rec Recorder) (*Take, error) {
	token, err := v.token("record voice note")
	if err != nil {
		return nil, err
	}

	take := &Take{notes: v, rec: rec, token: token}
	if err := rec.Start(ctx); err != nil {
		take.Abort()
		v.logger.Error().Err(err).Msg("failed to start recorder")
		return nil, fmt.Errorf("start recording: %w", err)
	}
	return take, nil
}

func (t *Take) Abort() {
	t.release.Do(t.rec.Release)
}

// Finish stops the capture, releases the recorder and uploads the audio.
func (t *Take) Finish(ctx context.Context, name, eventID string) (*domain.VoiceNote, error) {
	recording, err := t.rec.Stop(ctx)
	t.Abort()
	if err != nil {
		t.notes.logger.Error().Err(err).Msg("failed to stop recorder")
		return nil, fmt.Errorf("stop recording: %w", err)
	}
	if len(recording.Data) == 0 {
		return nil, domain.ValidationError{Field: "audio", Message: "recording is empty"}
	}

	if recording.ContentType == "" {
		recording.ContentType = defaultAudioType
	}
	upload := domain.VoiceNoteUpload{
		Name:        name,
		EventID:     eventID,
		FileName:    "voice-note-" + t.notes.newID() + ".webm",
		ContentType: recording.ContentType,
		Data:        recording.Data,
	}

	note, err := t.notes.api.UploadVoiceNote(ctx, t.token, upload)
	if err != nil {
		t.notes.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to upload voice note")
		return nil, fmt.Errorf("upload voice note: %w", err)
	}
	return note, nil
}

// Record captures until stop is closed and uploads the result. Cancelling ctx
// discards the capture.
func (v *VoiceNotes) Record(ctx context.Context, rec Recorder, name, eventID string, stop <-chan struct{}) (*domain.VoiceNote, error) {
	take, err := v.Start(ctx, rec)
	if err != nil {
		return nil, err
	}

	select {
	case <-stop:
		return take.Finish(ctx, name, eventID)
	case <-ctx.Done():
		take.Abort()
		return nil, ctx.Err()
	}
}
