package acroform

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var (
	objPattern  = regexp.MustCompile(`(?m)^(\d+)\s+(\d+)\s+obj\b`)
	refPattern  = regexp.MustCompile(`(\d+)\s+0\s+R`)
	sizePattern = regexp.MustCompile(`/Size\s+\d+`)
)

// Inject rewrites a finished PDF so that it carries the given interactive
// fields. The input must use a classic (uncompressed) cross-reference table,
// which is what the generation backend emits.
//
// The document bytes are modified in three steps: widget annotation objects
// are appended to the body, each page dictionary gains (or extends) its
// /Annots array, and the catalog gains an /AcroForm entry. The xref table
// and trailer /Size are then rebuilt from scratch.
func Inject(pdf []byte, fields []Field) ([]byte, error) {
	if len(fields) == 0 {
		return pdf, nil
	}

	maxObj := maxObjectNumber(pdf)
	if maxObj == 0 {
		return nil, fmt.Errorf("acroform: no indirect objects found; not a valid PDF")
	}

	pages, err := pageObjectNumbers(pdf)
	if err != nil {
		return nil, err
	}

	// Assign object numbers and group widget refs by page.
	next := maxObj + 1
	var body bytes.Buffer
	var fieldRefs []string
	refsByPage := make(map[int][]string)

	for i := range fields {
		f := &fields[i]
		if f.Page < 1 || f.Page > len(pages) {
			return nil, fmt.Errorf("acroform: field %q on page %d, document has %d page(s)",
				f.Name, f.Page, len(pages))
		}
		ref := fmt.Sprintf("%d 0 R", next)
		fmt.Fprintf(&body, "%d 0 obj\n%s\nendobj\n", next, f.annotation())
		fieldRefs = append(fieldRefs, ref)
		refsByPage[f.Page] = append(refsByPage[f.Page], ref)
		next++
	}

	acroNum := next
	fmt.Fprintf(&body,
		"%d 0 obj\n<</Fields [%s] /DR <</Font <</Helv <</Type /Font /Subtype /Type1 /BaseFont /Helvetica>> /ZaDb <</Type /Font /Subtype /Type1 /BaseFont /ZapfDingbats>>>>>> /DA (/Helv 0 Tf 0 g) /NeedAppearances true>>\nendobj\n",
		acroNum, joinRefs(fieldRefs))

	// Splice /Annots into each affected page dictionary. Pages are handled
	// in ascending order purely for determinism; every splice re-locates its
	// anchor because earlier splices shift offsets.
	pageNums := make([]int, 0, len(refsByPage))
	for p := range refsByPage {
		pageNums = append(pageNums, p)
	}
	sort.Ints(pageNums)

	for _, p := range pageNums {
		pdf, err = spliceAnnots(pdf, pages[p-1], refsByPage[p])
		if err != nil {
			return nil, err
		}
	}

	pdf, err = spliceIntoCatalog(pdf, fmt.Sprintf(" /AcroForm %d 0 R", acroNum))
	if err != nil {
		return nil, err
	}

	// Append the new objects immediately before the xref table.
	xrefIdx := bytes.LastIndex(pdf, []byte("\nxref\n"))
	if xrefIdx < 0 {
		return nil, fmt.Errorf("acroform: xref table not found")
	}
	var out bytes.Buffer
	out.Write(pdf[:xrefIdx+1])
	out.Write(body.Bytes())
	out.Write(pdf[xrefIdx+1:])

	return rebuildXref(out.Bytes()), nil
}

func joinRefs(refs []string) string {
	var b bytes.Buffer
	for i, r := range refs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r)
	}
	return b.String()
}

// maxObjectNumber scans for "N G obj" markers and returns the highest N.
func maxObjectNumber(data []byte) int {
	maxObj := 0
	for _, m := range objPattern.FindAllSubmatchIndex(data, -1) {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		if num > maxObj {
			maxObj = num
		}
	}
	return maxObj
}

// pageObjectNumbers returns the object numbers of the page dictionaries in
// document order, read from the page tree's /Kids array.
func pageObjectNumbers(data []byte) ([]int, error) {
	idx := bytes.Index(data, []byte("/Type /Pages"))
	if idx < 0 {
		return nil, fmt.Errorf("acroform: page tree not found")
	}
	start := findDictStart(data, idx)
	end := findDictEnd(data, idx)
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("acroform: malformed page tree dictionary")
	}
	dict := data[start : end+2]

	kidsIdx := bytes.Index(dict, []byte("/Kids"))
	if kidsIdx < 0 {
		return nil, fmt.Errorf("acroform: page tree has no /Kids")
	}
	open := bytes.IndexByte(dict[kidsIdx:], '[')
	closing := bytes.IndexByte(dict[kidsIdx:], ']')
	if open < 0 || closing < 0 || closing < open {
		return nil, fmt.Errorf("acroform: malformed /Kids array")
	}
	kids := dict[kidsIdx+open : kidsIdx+closing]

	var pages []int
	for _, m := range refPattern.FindAllSubmatch(kids, -1) {
		n, _ := strconv.Atoi(string(m[1]))
		pages = append(pages, n)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("acroform: empty /Kids array")
	}
	return pages, nil
}

// spliceAnnots adds widget references to the /Annots array of the page
// object objNum, creating the array when the page has none.
func spliceAnnots(data []byte, objNum int, refs []string) ([]byte, error) {
	start, end, err := objectDictBounds(data, objNum)
	if err != nil {
		return nil, err
	}
	dict := data[start : end+2]

	var newDict []byte
	if annIdx := bytes.Index(dict, []byte("/Annots")); annIdx >= 0 {
		closing := bytes.IndexByte(dict[annIdx:], ']')
		if closing < 0 {
			return nil, fmt.Errorf("acroform: malformed /Annots on page object %d", objNum)
		}
		at := annIdx + closing
		newDict = make([]byte, 0, len(dict)+len(refs)*12)
		newDict = append(newDict, dict[:at]...)
		newDict = append(newDict, ' ')
		newDict = append(newDict, joinRefs(refs)...)
		newDict = append(newDict, dict[at:]...)
	} else {
		insert := fmt.Sprintf(" /Annots [%s]", joinRefs(refs))
		newDict = make([]byte, 0, len(dict)+len(insert))
		newDict = append(newDict, dict[:len(dict)-2]...)
		newDict = append(newDict, insert...)
		newDict = append(newDict, '>', '>')
	}

	var out bytes.Buffer
	out.Write(data[:start])
	out.Write(newDict)
	out.Write(data[end+2:])
	return out.Bytes(), nil
}

// spliceIntoCatalog inserts entries into the document catalog dictionary.
func spliceIntoCatalog(data []byte, entries string) ([]byte, error) {
	idx := bytes.Index(data, []byte("/Type /Catalog"))
	if idx < 0 {
		return nil, fmt.Errorf("acroform: catalog not found")
	}
	start := findDictStart(data, idx)
	end := findDictEnd(data, idx)
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("acroform: malformed catalog dictionary")
	}

	var out bytes.Buffer
	out.Write(data[:end])
	out.WriteString(entries)
	out.Write(data[end:])
	return out.Bytes(), nil
}

// objectDictBounds locates the top-level dictionary of object objNum and
// returns the byte positions of its "<<" and ">>" tokens.
func objectDictBounds(data []byte, objNum int) (start, end int, err error) {
	header := []byte(fmt.Sprintf("%d 0 obj", objNum))
	pos := 0
	for {
		idx := bytes.Index(data[pos:], header)
		if idx < 0 {
			return 0, 0, fmt.Errorf("acroform: object %d not found", objNum)
		}
		idx += pos
		// Header must start a line; "12 0 obj" must not match "112 0 obj".
		if idx == 0 || data[idx-1] == '\n' || data[idx-1] == '\r' {
			open := bytes.Index(data[idx:], []byte("<<"))
			if open < 0 {
				return 0, 0, fmt.Errorf("acroform: object %d has no dictionary", objNum)
			}
			start = idx + open
			end = findDictEnd(data, start+2)
			if end < 0 {
				return 0, 0, fmt.Errorf("acroform: object %d has an unterminated dictionary", objNum)
			}
			return start, end, nil
		}
		pos = idx + 1
	}
}

// rebuildXref scans the PDF body for object definitions and rebuilds the
// cross-reference table with correct offsets, updating the trailer /Size to
// account for appended objects.
func rebuildXref(data []byte) []byte {
	matches := objPattern.FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return data
	}

	type objInfo struct {
		num, gen, offset int
	}
	var objects []objInfo
	maxObj := 0

	for _, m := range matches {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		objects = append(objects, objInfo{num: num, gen: gen, offset: m[0]})
		if num > maxObj {
			maxObj = num
		}
	}

	xrefIdx := bytes.LastIndex(data, []byte("\nxref\n"))
	if xrefIdx < 0 {
		return data
	}

	trailerIdx := bytes.Index(data[xrefIdx:], []byte("trailer"))
	if trailerIdx < 0 {
		return data
	}
	trailerAbsIdx := xrefIdx + trailerIdx

	startxrefIdx := bytes.Index(data[trailerAbsIdx:], []byte("startxref"))
	if startxrefIdx < 0 {
		return data
	}
	trailerDict := bytes.TrimSpace(data[trailerAbsIdx+7 : trailerAbsIdx+startxrefIdx])
	trailerDict = sizePattern.ReplaceAll(trailerDict, []byte(fmt.Sprintf("/Size %d", maxObj+1)))

	body := data[:xrefIdx+1]

	var xref bytes.Buffer
	xref.WriteString("xref\n")
	fmt.Fprintf(&xref, "0 %d\n", maxObj+1)
	xref.WriteString("0000000000 65535 f \n")

	offsets := make(map[int]objInfo, len(objects))
	for _, obj := range objects {
		offsets[obj.num] = obj
	}
	for i := 1; i <= maxObj; i++ {
		if obj, ok := offsets[i]; ok {
			fmt.Fprintf(&xref, "%010d %05d n \n", obj.offset, obj.gen)
		} else {
			xref.WriteString("0000000000 00000 f \n")
		}
	}

	newXrefOffset := len(body)

	var result bytes.Buffer
	result.Write(body)
	result.Write(xref.Bytes())
	result.WriteString("trailer\n")
	result.Write(trailerDict)
	fmt.Fprintf(&result, "\nstartxref\n%d\n%%%%EOF\n", newXrefOffset)

	return result.Bytes()
}

// findDictStart searches backward from pos for the nearest enclosing "<<".
func findDictStart(data []byte, pos int) int {
	depth := 0
	for i := pos - 1; i > 0; i-- {
		if i+1 < len(data) && data[i] == '>' && data[i+1] == '>' {
			depth++
		}
		if data[i] == '<' && data[i-1] == '<' {
			if depth == 0 {
				return i - 1
			}
			depth--
		}
	}
	return -1
}

// findDictEnd searches forward from pos, which must sit inside a
// dictionary, for that dictionary's closing ">>". Nested dictionaries
// are balanced.
func findDictEnd(data []byte, pos int) int {
	depth := 1
	for i := pos; i < len(data)-1; i++ {
		if data[i] == '<' && data[i+1] == '<' {
			depth++
			i++
			continue
		}
		if data[i] == '>' && data[i+1] == '>' {
			depth--
			if depth == 0 {
				return i
			}
			i++
		}
	}
	return -1
}
