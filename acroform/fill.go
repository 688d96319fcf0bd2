package acroform

import (
	"bytes"
	"fmt"
	"regexp"
)

var (
	textValuePattern   = regexp.MustCompile(`/V\s*\([^)]*\)`)
	buttonValuePattern = regexp.MustCompile(`/V\s+/[A-Za-z]+(\s+/AS\s+/[A-Za-z]+)?`)
)

// Fill sets values on a document's widget annotations, matching fields by
// name case-sensitively. Checkbox values are interpreted loosely: "true",
// "Yes" and "on" check the box, anything else clears it. Every named field
// must exist in the document.
//
// Like Inject, Fill works on the raw bytes and rebuilds the xref table
// afterwards.
func Fill(pdf []byte, values map[string]string) ([]byte, error) {
	if len(values) == 0 {
		return pdf, nil
	}

	modified := make([]byte, len(pdf))
	copy(modified, pdf)

	for name, value := range values {
		var err error
		modified, err = setFieldValue(modified, name, value)
		if err != nil {
			return nil, err
		}
	}
	return rebuildXref(modified), nil
}

// setFieldValue replaces (or inserts) the /V entry of the widget named name.
// The byte length of the document may change; the caller rebuilds the xref.
func setFieldValue(data []byte, name, value string) ([]byte, error) {
	pattern := []byte(fmt.Sprintf("/T (%s)", escapeString(name)))
	idx := bytes.Index(data, pattern)
	if idx < 0 {
		return nil, fmt.Errorf("acroform: field %q not found", name)
	}

	dictStart := findDictStart(data, idx)
	dictEnd := findDictEnd(data, idx)
	if dictStart < 0 || dictEnd < 0 {
		return nil, fmt.Errorf("acroform: malformed dictionary for field %q", name)
	}
	fieldDict := data[dictStart : dictEnd+2]

	var entry string
	if bytes.Contains(fieldDict, []byte("/FT /Btn")) {
		if value == "true" || value == "Yes" || value == "on" {
			entry = "/V /Yes /AS /Yes"
		} else {
			entry = "/V /Off /AS /Off"
		}
	} else {
		entry = fmt.Sprintf("/V (%s)", escapeString(value))
	}

	var newDict []byte
	if loc := textValuePattern.FindIndex(fieldDict); loc != nil {
		newDict = append(newDict, fieldDict[:loc[0]]...)
		newDict = append(newDict, entry...)
		newDict = append(newDict, fieldDict[loc[1]:]...)
	} else if loc := buttonValuePattern.FindIndex(fieldDict); loc != nil {
		newDict = append(newDict, fieldDict[:loc[0]]...)
		newDict = append(newDict, entry...)
		newDict = append(newDict, fieldDict[loc[1]:]...)
	} else {
		newDict = append(newDict, fieldDict[:len(fieldDict)-2]...)
		newDict = append(newDict, ' ')
		newDict = append(newDict, entry...)
		newDict = append(newDict, '>', '>')
	}

	var out bytes.Buffer
	out.Write(data[:dictStart])
	out.Write(newDict)
	out.Write(data[dictEnd+2:])
	return out.Bytes(), nil
}
