package moderation

import (
	"log/slog"

	"github.com/abadojack/whatlanggo"
)

// Sanitized is a chat message content ready to be posted.
type Sanitized struct {
	Content       string
	CensoredWords []string
	Lang          string
}

// Sanitizer censors chat content and detects its language.
type Sanitizer struct {
	moderator Moderator
	log       *slog.Logger
}

func NewSanitizer(moderator Moderator, log *slog.Logger) *Sanitizer {
	return &Sanitizer{moderator: moderator, log: log}
}

// NewDefaultSanitizer builds a Sanitizer over the embedded word lists.
func NewDefaultSanitizer(censoredChar rune, log *slog.Logger) (*Sanitizer, error) {
	data, err := NewCensoredLoader().LoadAll(CensoredDir)
	if err != nil {
		return nil, err
	}
	log.Info("Censored words loaded", "languages", data.Languages, "words", len(data.Words))
	moderator, err := NewModerator(data.Words, censoredChar, log)
	if err != nil {
		return nil, err
	}
	return NewSanitizer(moderator, log), nil
}

func (s *Sanitizer) Sanitize(content string) Sanitized {
	// Detection runs on the raw content, censoring would skew it
	lang := DetectLang(content)
	censored, words := s.moderator.Censor(content)
	if len(words) > 0 {
		s.log.Debug("Content censored", "words", len(words), "lang", lang)
	}
	return Sanitized{Content: censored, CensoredWords: words, Lang: lang}
}

// DetectLang returns the ISO 639-1 code of content, or an empty string when
// the detector is not confident.
func DetectLang(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
