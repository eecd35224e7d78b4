package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// NotAvailable is shown for metrics the result does not carry
const NotAvailable = "N/A"

// NoContent is shown when the result has no final content
const NoContent = "No content available"

// Citation is one source listed under the final content
type Citation struct {
	ChunkIndex int64  `json:"chunkIndex"`
	URL        string `json:"url"`
}

// Summary is the headline view of an analysis result
type Summary struct {
	Completed     bool       `json:"completed"`
	ExecutionTime string     `json:"executionTime"`
	TotalTokens   int64      `json:"totalTokens"`
	SessionID     string     `json:"sessionId"`
	Content       string     `json:"content"`
	Citations     []Citation `json:"citations"`
}

// Summarize extracts the summary fields from a result document
func Summarize(raw []byte) Summary {
	doc := gjson.ParseBytes(raw)
	s := Summary{
		Completed:     doc.Get("completed").Bool(),
		ExecutionTime: NotAvailable,
		SessionID:     NotAvailable,
		Content:       NoContent,
		Citations:     []Citation{},
	}

	metrics := doc.Get("execution_metrics")
	if secs := metrics.Get("execution_time_seconds"); secs.Type == gjson.Number && secs.Float() != 0 {
		s.ExecutionTime = strconv.FormatFloat(secs.Float(), 'f', 3, 64) + "s"
	}
	if id := metrics.Get("session_id"); id.Exists() && id.String() != "" {
		s.SessionID = id.String()
	}
	s.TotalTokens = TotalTokens(metrics.Get("token_usage"))

	content := doc.Get("final_content.content")
	switch {
	case content.Type == gjson.String && content.Str != "":
		s.Content = content.Str
	case content.IsObject():
		s.Content = FormatMarkdown(content, 0)
	}

	for _, c := range doc.Get("final_content.citations").Array() {
		url := c.Get("url").String()
		if url == "" {
			url = c.Get("original_link").String()
		}
		s.Citations = append(s.Citations, Citation{ChunkIndex: c.Get("chunk_index").Int(), URL: url})
	}
	return s
}

// TotalTokens sums total_tokens over every operation in a token usage
// document. The backend sends the document as a JSON encoded string; an
// object is accepted too. Anything unreadable counts as zero.
func TotalTokens(usage gjson.Result) int64 {
	doc := usage
	if usage.Type == gjson.String {
		if !gjson.Valid(usage.Str) {
			return 0
		}
		doc = gjson.Parse(usage.Str)
	}
	if !doc.IsObject() {
		return 0
	}

	var total int64
	doc.ForEach(func(_, op gjson.Result) bool {
		total += op.Get("total_tokens").Int()
		return true
	})
	return total
}

// FormatTokens renders a token count with thousands separators, or N/A
func FormatTokens(n int64) string {
	if n <= 0 {
		return NotAvailable
	}
	digits := strconv.FormatInt(n, 10)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	return sb.String()
}

// FormatMarkdown renders an object as nested markdown: arrays become
// bullet lists, objects nest one indent deeper, scalars follow their key.
func FormatMarkdown(obj gjson.Result, level int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", level)

	obj.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.IsArray():
			fmt.Fprintf(&sb, "%s**%s:**\n", indent, key.String())
			for _, item := range value.Array() {
				fmt.Fprintf(&sb, "%s- %s\n", indent, scalar(item))
			}
			sb.WriteString("\n")
		case value.IsObject():
			fmt.Fprintf(&sb, "%s**%s:**\n", indent, key.String())
			sb.WriteString(FormatMarkdown(value, level+1))
		default:
			fmt.Fprintf(&sb, "%s**%s:** %s\n\n", indent, key.String(), scalar(value))
		}
		return true
	})
	return sb.String()
}

func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.JSON:
		return v.Raw
	default:
		return v.String()
	}
}
