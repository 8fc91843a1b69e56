package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout the codec writes: UTC, millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrCorruptPayload is returned by Decode when the stored text is not a JSON
// array at all.
var ErrCorruptPayload = errors.New("corrupt task payload")

// DateLayout is the date-only form accepted from users.
const DateLayout = "2006-01-02"

// zoned layouts carry their own offset; local layouts have none.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
)

// FormatTimestamp renders t the way the codec stores it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored or user-supplied timestamp. Date-only values
// are midnight UTC; values without a zone are local time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return parseLocal(s, time.Local)
}

// ParseTimestampIn is ParseTimestamp with date-only and zoneless values read
// as wall-clock time in loc. A date-only value is midnight of that day in loc.
func ParseTimestampIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	return parseLocal(s, loc)
}

func parseLocal(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// NormalizeDueDate turns user input into the stored due date form. Date-only
// and zoneless input is read in loc, so "2025-07-01" becomes midnight of
// July 1 there, written zone-qualified in UTC. Empty input stays empty.
func NormalizeDueDate(s string, loc *time.Location) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := ParseTimestampIn(s, loc)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t), nil
}

// EditableDueDate renders a stored due date for editing in loc: the bare date
// at local midnight, otherwise date and minutes.
func EditableDueDate(s string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, err := ParseTimestampIn(s, loc)
	if err != nil {
		return s
	}
	t = t.In(loc)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format("2006-01-02T15:04")
}

// Serialize converts tasks to their storable form. It does not validate.
func Serialize(tasks []Task) []Record {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, Record{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
			CreatedAt:   FormatTimestamp(t.CreatedAt),
			DueDate:     t.DueDate,
		})
	}
	return records
}

// Encode renders records as the stored JSON text.
func Encode(records []Record) ([]byte, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// Marshal serializes and encodes tasks in one step.
func Marshal(tasks []Task) ([]byte, error) {
	return Encode(Serialize(tasks))
}

// Decode parses stored text into loosely typed entries. Anything other than a
// JSON array yields an error wrapping ErrCorruptPayload.
func Decode(data []byte) ([]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	entries, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrCorruptPayload, jsonKind(v))
	}
	return entries, nil
}

// Unmarshal decodes and parses stored text in one step.
func Unmarshal(data []byte, now time.Time) ([]Task, ParseReport, error) {
	entries, err := Decode(data)
	if err != nil {
		return nil, ParseReport{}, err
	}
	tasks, report := Parse(entries, now)
	return tasks, report, nil
}

// Parse turns untrusted entries into tasks. Each entry is handled on its own:
// a bad entry is dropped or partially defaulted without affecting the others.
// now is used for entries whose createdAt cannot be read.
func Parse(entries []any, now time.Time) ([]Task, ParseReport) {
	report := ParseReport{Total: len(entries)}
	tasks := make([]Task, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for i, entry := range entries {
		path := fmt.Sprintf("[%d]", i)
		task, issues, ok := parseEntry(entry, path, now)
		report.Issues = append(report.Issues, issues...)
		if !ok {
			report.Dropped++
			continue
		}
		if seen[task.ID] {
			report.Dropped++
			report.Issues = append(report.Issues, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %q", task.ID),
			})
			continue
		}
		seen[task.ID] = true

		for _, issue := range issues {
			var ve *ValidationError
			if !errors.As(issue, &ve) {
				continue
			}
			switch ve.Path {
			case path + ".createdAt":
				report.DefaultedCreated++
			case path + ".dueDate":
				report.InvalidDue++
			}
		}
		tasks = append(tasks, task)
	}

	report.Kept = len(tasks)
	return tasks, report
}

func parseEntry(entry any, path string, now time.Time) (Task, []error, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Task{}, []error{&ValidationError{
			Path: path,
			Err:  fmt.Errorf("expected object, got %s", jsonKind(entry)),
		}}, false
	}

	id, ok := coerceText(obj["id"])
	if !ok || strings.TrimSpace(id) == "" {
		return Task{}, []error{&ValidationError{Path: path + ".id", Err: fmt.Errorf("missing or unusable id")}}, false
	}
	title, ok := coerceText(obj["title"])
	if !ok {
		return Task{}, []error{&ValidationError{Path: path + ".title", Err: fmt.Errorf("missing or unusable title")}}, false
	}
	description, _ := coerceText(obj["description"])

	var issues []error
	task := Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   coerceBool(obj["completed"]),
	}

	created, err := coerceTime(obj["createdAt"])
	if err != nil {
		issues = append(issues, &ValidationError{Path: path + ".createdAt", Err: fmt.Errorf("defaulted to load time: %w", err)})
		created = now
	}
	task.CreatedAt = created

	due, state := ClassifyDueDate(obj["dueDate"])
	if state == DueInvalid {
		issues = append(issues, &ValidationError{Path: path + ".dueDate", Err: fmt.Errorf("not a timestamp, treated as absent")})
	}
	task.DueDate = due

	return task, issues, true
}

// ClassifyDueDate decides what a stored dueDate value means. Only DueValid
// returns the text, unchanged.
func ClassifyDueDate(v any) (string, DueState) {
	if v == nil {
		return "", DueAbsent
	}
	s, ok := v.(string)
	if !ok {
		return "", DueInvalid
	}
	if strings.TrimSpace(s) == "" {
		return "", DueAbsent
	}
	if _, err := ParseTimestamp(s); err != nil {
		return "", DueInvalid
	}
	return s, DueValid
}

func coerceText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func coerceBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "1"
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

// coerceTime accepts timestamp text, or a number of Unix milliseconds.
func coerceTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case string:
		return ParseTimestamp(x)
	case float64:
		return time.UnixMilli(int64(x)), nil
	case nil:
		return time.Time{}, fmt.Errorf("missing")
	default:
		return time.Time{}, fmt.Errorf("expected string, got %s", jsonKind(v))
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
