package post

import "regexp"

// hiddenInputPattern matches <input type="hidden" name=X value=Y> in either
// attribute order, with or without quotes around the attribute values.
var hiddenInputPattern = regexp.MustCompile(
	`(?is)<input[^>]*type=["']?hidden["']?[^>]*>`)

var nameAttrPattern = regexp.MustCompile(`(?is)name=["']?([^"'\s>]+)["']?`)
var valueAttrPattern = regexp.MustCompile(`(?is)value=["']?([^"'>]*)["']?`)

// ExtractHiddenInputs finds every hidden <input> tag in body and returns its
// name/value pairs in document order, for the confirmation two-step named in
// spec §4.I.2.
func ExtractHiddenInputs(body string) [][2]string {
	tags := hiddenInputPattern.FindAllString(body, -1)
	out := make([][2]string, 0, len(tags))
	for _, tag := range tags {
		nameMatch := nameAttrPattern.FindStringSubmatch(tag)
		if nameMatch == nil {
			continue
		}
		value := ""
		if valueMatch := valueAttrPattern.FindStringSubmatch(tag); valueMatch != nil {
			value = valueMatch[1]
		}
		out = append(out, [2]string{nameMatch[1], value})
	}
	return out
}
