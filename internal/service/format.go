package service

import (
	"strings"

	"github.com/repstack/knowledge/internal/domain"
)

const (
	promptPreamble = "Reference knowledge from the coaching library:"

	promptPostamble = "Use this knowledge to inform the answer. " +
		"Do not cite or mention the sources directly."
)

// SourceRecord is the consumer-facing projection of a chunk's provenance.
type SourceRecord struct {
	VideoURL   string `json:"video_url,omitempty"`
	VideoTitle string `json:"video_title,omitempty"`
	Channel    string `json:"channel,omitempty"`
}

// FormattedRecord is the flat, consumer-facing projection of a chunk.
// Internal fields (embedding, view count, timestamps) are stripped.
type FormattedRecord struct {
	ID           string        `json:"id"`
	Type         string        `json:"knowledge_type"`
	Content      string        `json:"content"`
	Summary      string        `json:"summary,omitempty"`
	ExerciseName string        `json:"exercise_name,omitempty"`
	MuscleGroup  string        `json:"muscle_group,omitempty"`
	Difficulty   string        `json:"difficulty_level,omitempty"`
	Source       *SourceRecord `json:"source,omitempty"`
}

// FormatChunk projects a chunk into its flat record shape. Pure and
// total: missing optional fields produce zero values, never a panic.
func FormatChunk(c *domain.KnowledgeChunk) FormattedRecord {
	if c == nil {
		return FormattedRecord{}
	}

	record := FormattedRecord{
		ID:           c.ID,
		Type:         string(c.Type),
		Content:      c.Content,
		Summary:      c.Summary,
		ExerciseName: c.ExerciseName,
		MuscleGroup:  c.MuscleGroup,
		Difficulty:   c.Difficulty.String(),
	}
	if c.Source != nil {
		record.Source = &SourceRecord{
			VideoURL:   c.Source.VideoURL,
			VideoTitle: c.Source.VideoTitle,
			Channel:    c.Source.Channel,
		}
	}
	return record
}

// FormatChunks projects a chunk list, preserving order.
func FormatChunks(chunks []*domain.KnowledgeChunk) []FormattedRecord {
	records := make([]FormattedRecord, 0, len(chunks))
	for _, c := range chunks {
		if c == nil {
			continue
		}
		records = append(records, FormatChunk(c))
	}
	return records
}

// BuildPromptBlock renders chunks into a text block for prompt
// assembly: a fixed preamble, one section per chunk headed by its
// summary (or humanized type), and a postamble telling the consumer
// not to cite sources. Returns "" for an empty list.
func BuildPromptBlock(chunks []*domain.KnowledgeChunk) string {
	sections := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c == nil {
			continue
		}

		heading := strings.TrimSpace(c.Summary)
		if heading == "" {
			heading = domain.HumanizeKnowledgeType(c.Type)
		}

		var b strings.Builder
		b.WriteString("### ")
		b.WriteString(heading)
		b.WriteString("\n")
		b.WriteString(c.Content)
		if c.ExerciseName != "" {
			b.WriteString("\nExercise: ")
			b.WriteString(c.ExerciseName)
		}
		if c.MuscleGroup != "" {
			b.WriteString("\nMuscle group: ")
			b.WriteString(c.MuscleGroup)
		}
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return ""
	}

	return promptPreamble + "\n\n" + strings.Join(sections, "\n\n") + "\n\n" + promptPostamble
}
