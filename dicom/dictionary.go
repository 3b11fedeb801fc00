package dicom

// Dictionary supports looking up DICOM data dictionary as defined in
//
// ftp://medical.nema.org/medical/dicom/2011/11_06pu.pdf

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"sync"
)

// Errors
var (
	ErrTagNotFound           = errors.New("could not find tag in dicom dictionary")
	ErrElementNotFound       = errors.New("could not find element in data set")
	ErrBrokenFile            = errors.New("invalid DICOM file")
	ErrOddLength             = errors.New("encountered odd length Value Length")
	ErrUndefLengthNotAllowed = errors.New("UC, UR and UT may not have an Undefined Length, i.e.,a Value Length of FFFFFFFFH")
)

var (
	tagDictOnce      sync.Once
	tagDict          map[Tag]TagInfo
	tagDictByKeyword map[string]TagInfo
	tagDictByName    map[string]TagInfo
)

func maybeInitTagDict() {
	tagDictOnce.Do(func() {
		tagDict = make(map[Tag]TagInfo)
		tagDictByKeyword = make(map[string]TagInfo)
		tagDictByName = make(map[string]TagInfo)
		for _, entry := range readDictionary(dicomDictData) {
			tagDict[entry.Tag] = entry
			tagDictByKeyword[strings.ToLower(entry.Keyword)] = entry
			tagDictByName[strings.ToLower(entry.Name)] = entry
		}
	})
}

func readDictionary(data string) []TagInfo {
	reader := csv.NewReader(bytes.NewReader([]byte(data)))
	reader.Comma = '\t'  // tab separated file
	reader.Comment = '#' // comments start with #
	reader.LazyQuotes = true
	var entries []TagInfo
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		tag, err := ParseTag(row[0])
		if err != nil {
			continue // we don't support groups yet
		}
		entries = append(entries, TagInfo{
			Tag:     tag,
			VR:      strings.ToUpper(row[1]),
			Keyword: row[2],
			VM:      row[3],
			Name:    row[4],
		})
	}
	return entries
}
