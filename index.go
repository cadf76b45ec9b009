package wikimcp

import (
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// An IndexEntry is one page line from a multistream index
// ("offset:pageid:title").
type IndexEntry struct {
	StreamOffset int64
	PageID       uint64
	Title        string
}

func (i IndexEntry) String() string {
	return fmt.Sprintf("%v:%v:%v", i.StreamOffset, i.PageID, i.Title)
}

// An IndexReader reads a wikipedia multistream index.
type IndexReader struct {
	r          *bufio.Scanner
	base       int64
	prevOffset int64
}

// NewIndexReader gets an index reader over uncompressed index lines.
func NewIndexReader(r io.Reader) *IndexReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &IndexReader{r: s}
}

// Next gets the next entry from the index stream.
//
// Offsets in older indexes wrapped at 32 bits; a decreasing offset is
// taken to mean another wrap.
func (ir *IndexReader) Next() (IndexEntry, error) {
	if !ir.r.Scan() {
		err := ir.r.Err()
		if err == nil {
			err = io.EOF
		}
		return IndexEntry{}, err
	}
	parts := strings.SplitN(ir.r.Text(), ":", 3)
	if len(parts) != 3 {
		return IndexEntry{}, errors.New("bad index record")
	}
	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}
	if offset < ir.prevOffset {
		ir.base += (1 << 32)
	}
	ir.prevOffset = offset
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}

	return IndexEntry{
		StreamOffset: offset + ir.base,
		PageID:       id,
		Title:        parts[2],
	}, nil
}

// IndexSummaryReader gets the stream offsets and page counts of an
// index without keeping the individual entries.
type IndexSummaryReader struct {
	index      *IndexReader
	prevOffset int64
	count      int
}

// NewIndexSummaryReader gets an IndexSummaryReader over index lines.
func NewIndexSummaryReader(r io.Reader) (*IndexSummaryReader, error) {
	rv := &IndexSummaryReader{index: NewIndexReader(r)}
	first, err := rv.index.Next()
	if err != nil {
		return nil, err
	}
	rv.prevOffset = first.StreamOffset
	rv.count = 1
	return rv, nil
}

// Next gets the next stream offset and its page count.
//
// The last stream comes back along with io.EOF; after that the offset
// and count are zero.
func (isr *IndexSummaryReader) Next() (offset int64, count int, err error) {
	for {
		e, err := isr.index.Next()
		if err != nil {
			offset, count = isr.prevOffset, isr.count
			isr.prevOffset, isr.count = 0, 0
			return offset, count, err
		}

		if e.StreamOffset != isr.prevOffset {
			offset, count = isr.prevOffset, isr.count
			isr.prevOffset, isr.count = e.StreamOffset, 1
			return offset, count, nil
		}
		isr.count++
	}
}

// IndexStats summarizes a multistream index.
type IndexStats struct {
	Streams int
	Pages   int64
}

// SummarizeIndex counts the streams and pages listed in an index.
func SummarizeIndex(r io.Reader) (IndexStats, error) {
	var st IndexStats
	isr, err := NewIndexSummaryReader(r)
	if err == io.EOF {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	for {
		_, n, err := isr.Next()
		if n > 0 {
			st.Streams++
			st.Pages += int64(n)
		}
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, err
		}
	}
}

// SummarizeIndexFile summarizes a multistream index file, which may be
// bzip2 compressed.
func SummarizeIndexFile(path string) (IndexStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return IndexStats{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".bz2") {
		r = bzip2.NewReader(f)
	}
	return SummarizeIndex(r)
}
