package dicom

import (
	"io"
	"strings"
)

// DirectoryRecord contains info about one DICOM file mentioned in DICOMDIR.
type DirectoryRecord struct {
	// Path is relative to the directory holding the DICOMDIR, with '/'
	// separators.
	Path string
	// RecordType is the DirectoryRecordType, e.g. "IMAGE".
	RecordType string
}

var tagDirectoryRecordType = Tag{0x0004, 0x1430}

// ParseDICOMDIR parses a DICOMDIR file contents from "in".
func ParseDICOMDIR(in io.Reader) (recs []DirectoryRecord, err error) {
	bytes, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	f, err := ReadBytes(bytes, ReadOptions{})
	if err != nil {
		return nil, err
	}
	seq, err := f.DataSet.FindElementByTag(TagDirectoryRecordSequence)
	if err != nil {
		return nil, err
	}
	for _, item := range seq.Items() {
		elem, err := item.FindElementByTag(TagReferencedFileID)
		if err != nil {
			continue
		}
		names, err := elem.GetStrings()
		if err != nil {
			return nil, err
		}
		rec := DirectoryRecord{Path: strings.Join(names, "/")}
		if typ, err := item.FindElementByTag(tagDirectoryRecordType); err == nil {
			rec.RecordType = typ.StringValue()
		}
		if rec.Path != "" {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
