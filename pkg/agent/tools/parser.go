package tools

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	defaultServerName = "local"
	maxXMLSize        = 10 * 1024 * 1024 // 10MB limit for XML tool calls
)

const (
	toolOpenTag  = "<tool>"
	toolCloseTag = "</tool>"
	cdataOpen    = "<![CDATA["
	cdataClose   = "]]>"
)

// ampersandEntityRegex matches ampersands that are already part of XML entities
// to avoid double-escaping them. Matches: &amp; &lt; &gt; &quot; &apos; &#123; &#xAB;
var ampersandEntityRegex = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)

// ParsedToolCall is one complete <tool> element found in text. Exactly one of
// Call and Err is set.
type ParsedToolCall struct {
	Call *ToolCall
	Err  error
}

// ParseToolCall extracts the first tool call from text containing
// XML-formatted tool invocations.
//
// Expected format:
//
//	<tool>
//	<server_name>local</server_name>
//	<tool_name>affine_update_doc</tool_name>
//	<arguments>
//	  <workspaceId>ws-1</workspaceId>
//	  <docId>doc-42</docId>
//	  <markdown><![CDATA[# Title
//	Body]]></markdown>
//	</arguments>
//	</tool>
//
// A </tool> inside a CDATA section does not end the element.
// Returns the parsed ToolCall and the remaining text after removing the tool call.
func ParseToolCall(text string) (*ToolCall, string, error) {
	if len(text) > maxXMLSize {
		return nil, text, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize)
	}

	spans := toolSpans(text)
	if len(spans) == 0 {
		return nil, text, fmt.Errorf("no tool call found in text")
	}
	loc := spans[0]

	toolCall, err := decodeToolCall(text[loc[0]:loc[1]])
	if err != nil {
		return nil, text, err
	}

	remainingText := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return toolCall, remainingText, nil
}

// ParseToolCalls extracts every tool call in text, in order of appearance.
// It stops at the first element that fails to decode; use ScanToolCalls to
// keep going past bad elements.
func ParseToolCalls(text string) ([]*ToolCall, error) {
	if len(text) > maxXMLSize {
		return nil, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize)
	}

	var calls []*ToolCall
	for _, loc := range toolSpans(text) {
		call, err := decodeToolCall(text[loc[0]:loc[1]])
		if err != nil {
			return calls, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// ScanToolCalls decodes every complete tool element in text independently,
// so one malformed element does not hide the ones after it. It also returns
// the offset just past the last complete element (0 when there is none);
// text after that offset may hold an element that is still arriving.
func ScanToolCalls(text string) ([]ParsedToolCall, int) {
	spans := toolSpans(text)
	if len(spans) == 0 {
		return nil, 0
	}

	results := make([]ParsedToolCall, 0, len(spans))
	for _, loc := range spans {
		if loc[1]-loc[0] > maxXMLSize {
			results = append(results, ParsedToolCall{
				Err: fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize),
			})
			continue
		}
		call, err := decodeToolCall(text[loc[0]:loc[1]])
		results = append(results, ParsedToolCall{Call: call, Err: err})
	}
	return results, spans[len(spans)-1][1]
}

func decodeToolCall(toolXML string) (*ToolCall, error) {
	toolXML = strings.TrimSpace(toolXML)

	var toolCall ToolCall
	if err := UnmarshalXMLWithFallback([]byte(toolXML), &toolCall); err != nil {
		snippet := toolXML
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, fmt.Errorf("failed to unmarshal tool call XML: %w\nXML snippet: %s", err, snippet)
	}

	if toolCall.ToolName == "" {
		return nil, fmt.Errorf("tool_name is required in tool call")
	}
	if toolCall.ServerName == "" {
		toolCall.ServerName = defaultServerName
	}
	return &toolCall, nil
}

// HasToolCall checks if the text contains a complete tool call.
func HasToolCall(text string) bool {
	return len(toolSpans(text)) > 0
}

// toolSpans returns the [start, end) offsets of every complete <tool> element.
func toolSpans(text string) [][2]int {
	var spans [][2]int
	pos := 0
	for {
		start := strings.Index(text[pos:], toolOpenTag)
		if start < 0 {
			return spans
		}
		start += pos

		end := closingToolTag(text, start+len(toolOpenTag))
		if end < 0 {
			return spans
		}
		spans = append(spans, [2]int{start, end})
		pos = end
	}
}

// closingToolTag returns the offset just past the </tool> that closes an
// element whose body starts at from, skipping CDATA sections. It returns -1
// when the element is incomplete.
func closingToolTag(text string, from int) int {
	i := from
	for {
		closeAt := strings.Index(text[i:], toolCloseTag)
		if closeAt < 0 {
			return -1
		}
		cdataAt := strings.Index(text[i:], cdataOpen)
		if cdataAt < 0 || cdataAt > closeAt {
			return i + closeAt + len(toolCloseTag)
		}

		bodyStart := i + cdataAt + len(cdataOpen)
		cdataEnd := strings.Index(text[bodyStart:], cdataClose)
		if cdataEnd < 0 {
			return -1
		}
		i = bodyStart + cdataEnd + len(cdataClose)
	}
}

// UnmarshalXMLWithFallback attempts to unmarshal XML, with fallback to
// escape unescaped ampersands if the initial parse fails.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	err := xml.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	return xml.Unmarshal(escapeUnescapedAmpersands(data), v)
}

// escapeUnescapedAmpersands replaces bare & with &amp; while preserving
// existing entities (&amp;, &lt;, &gt;, &quot;, &apos;, &#..;)
func escapeUnescapedAmpersands(data []byte) []byte {
	text := string(data)

	entityPositions := make(map[int]bool)
	for _, match := range ampersandEntityRegex.FindAllStringIndex(text, -1) {
		entityPositions[match[0]] = true
	}

	var result strings.Builder
	result.Grow(len(text) + 20)

	for i := 0; i < len(text); i++ {
		if text[i] == '&' && !entityPositions[i] {
			result.WriteString("&amp;")
		} else {
			result.WriteByte(text[i])
		}
	}

	return []byte(result.String())
}

// BuildArgumentsXML renders flat string arguments as an <arguments> block.
// Keys are emitted in sorted order; values are escaped.
func BuildArgumentsXML(args map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("<arguments>")
	for _, k := range keys {
		if k == "" || strings.ContainsAny(k, "<>&/ \t\n\"'") {
			return nil, fmt.Errorf("invalid argument name %q", k)
		}
		fmt.Fprintf(&buf, "<%s>", k)
		if err := xml.EscapeText(&buf, []byte(args[k])); err != nil {
			return nil, fmt.Errorf("escape argument %s: %w", k, err)
		}
		fmt.Fprintf(&buf, "</%s>", k)
	}
	buf.WriteString("</arguments>")
	return buf.Bytes(), nil
}
