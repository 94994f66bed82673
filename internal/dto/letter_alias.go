package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/gratitude-api/internal/models"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

// Canonical letter keys reported in requiredFields.
const (
	FieldName          = "name"
	FieldLetterContent = "letterContent"
	FieldCountryID     = "countryId"
)

// Alias groups, resolved left to right. The first present value wins.
var (
	nameKeys        = []string{"name", "sender"}
	affiliationKeys = []string{"school", "affiliation"}
	contentKeys     = []string{"letterContent", "message"}
	targetKeys      = []string{"countryId", "country"}
	gradeKeys       = []string{"grade"}
	translationKeys = []string{"translatedContent", "translation"}
)

// NormalizeLetter resolves a loosely typed payload into a canonical Letter.
// It fails with a validation error naming every missing required key.
func NormalizeLetter(input map[string]interface{}) (*models.Letter, error) {
	letter := &models.Letter{
		WriterName:        firstPresent(input, nameKeys),
		School:            firstPresent(input, affiliationKeys),
		Grade:             firstPresent(input, gradeKeys),
		OriginalContent:   firstPresent(input, contentKeys),
		TranslatedContent: firstPresent(input, translationKeys),
		CountryID:         firstPresent(input, targetKeys),
	}

	var missing []string
	if letter.WriterName == "" {
		missing = append(missing, FieldName)
	}
	if letter.OriginalContent == "" {
		missing = append(missing, FieldLetterContent)
	}
	if letter.CountryID == "" {
		missing = append(missing, FieldCountryID)
	}
	if len(missing) > 0 {
		return nil, appErrors.Validation("missing required fields: "+strings.Join(missing, ", "), missing...)
	}

	if letter.TranslatedContent == "" {
		letter.TranslatedContent = models.TranslationPlaceholder(letter.OriginalContent)
	}
	return letter, nil
}

func firstPresent(input map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if v := scalarString(input[key]); v != "" {
			return v
		}
	}
	return ""
}

// scalarString renders scalars as trimmed strings. Nil and structured values
// count as absent.
func scalarString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]interface{}, []interface{}:
		return ""
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case bool, int, int32, int64, float32, float64, uint, uint32, uint64:
		return fmt.Sprint(val)
	default:
		return ""
	}
}

// LetterRecord is the wire form of a Letter. It repeats every value under
// both canonical and alias keys so clients using either naming read it.
type LetterRecord struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Sender            string     `json:"sender"`
	School            string     `json:"school,omitempty"`
	Affiliation       string     `json:"affiliation,omitempty"`
	Grade             string     `json:"grade,omitempty"`
	LetterContent     string     `json:"letterContent"`
	Message           string     `json:"message"`
	OriginalContent   string     `json:"originalContent"`
	TranslatedContent string     `json:"translatedContent"`
	CountryID         string     `json:"countryId"`
	Country           string     `json:"country"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

// NewLetterRecord builds the dual-key wire form. id overrides the letter's
// own id when the letter was never stored.
func NewLetterRecord(letter *models.Letter, id string) LetterRecord {
	if id == "" && !letter.ID.IsZero() {
		id = letter.ID.Hex()
	}
	record := LetterRecord{
		ID:                id,
		Name:              letter.WriterName,
		Sender:            letter.WriterName,
		School:            letter.School,
		Affiliation:       letter.School,
		Grade:             letter.Grade,
		LetterContent:     letter.OriginalContent,
		Message:           letter.OriginalContent,
		OriginalContent:   letter.OriginalContent,
		TranslatedContent: letter.TranslatedContent,
		CountryID:         letter.CountryID,
		Country:           letter.CountryID,
	}
	if !letter.CreatedAt.IsZero() {
		created := letter.CreatedAt
		record.CreatedAt = &created
	}
	return record
}

// NewLetterRecords maps stored letters to their wire form.
func NewLetterRecords(letters []models.Letter) []LetterRecord {
	records := make([]LetterRecord, 0, len(letters))
	for i := range letters {
		records = append(records, NewLetterRecord(&letters[i], ""))
	}
	return records
}

// LetterFilter narrows letter listings.
type LetterFilter struct {
	CountryID string `form:"countryId" json:"countryId"`
	Limit     int    `form:"limit" json:"limit" validate:"omitempty,min=1,max=200"`
	Offset    int    `form:"offset" json:"offset" validate:"omitempty,min=0"`
}
