package pixels

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/dicom"
)

const (
	coordinatesAll  = "all"
	coordinatesFrom = "from:"
)

// regionKeywords are read, in order, from each item of a from: sequence.
var regionKeywords = []string{"RegionLocationMinX0", "RegionLocationMinY0", "RegionLocationMaxX1", "RegionLocationMaxY1"}

// Shape returns the pixel array shape described by the header: (rows,
// columns), with a leading frames axis when there is more than one frame and
// a trailing samples axis for color images.
func Shape(ds *dicom.DataSet) ([]int, error) {
	rows, err := intValue(ds, dicom.TagRows)
	if err != nil {
		return nil, err
	}
	cols, err := intValue(ds, dicom.TagColumns)
	if err != nil {
		return nil, err
	}
	shape := []int{rows, cols}
	if frames, err := intValue(ds, dicom.TagNumberOfFrames); err == nil && frames > 1 {
		shape = append([]int{frames}, shape...)
	}
	if samples, err := intValue(ds, dicom.TagSamplesPerPixel); err == nil && samples > 1 {
		shape = append(shape, samples)
	}
	return shape, nil
}

func intValue(ds *dicom.DataSet, tag dicom.Tag) (int, error) {
	elem, err := ds.FindElementByTag(tag)
	if err != nil {
		return 0, err
	}
	return elem.GetInt()
}

// allCoordinates returns the full image extent "0,0,columns,rows" for the
// four array layouts: greyscale, color, greyscale cine and color cine.
func allCoordinates(ds *dicom.DataSet) (string, error) {
	shape, err := Shape(ds)
	if err != nil {
		return "", err
	}
	color := false
	if samples, err := intValue(ds, dicom.TagSamplesPerPixel); err == nil && samples > 1 {
		color = true
	}
	var rows, cols int
	switch {
	case len(shape) == 2:
		rows, cols = shape[0], shape[1]
	case len(shape) == 3 && color:
		rows, cols = shape[0], shape[1]
	case len(shape) == 3:
		rows, cols = shape[1], shape[2]
	case len(shape) == 4:
		rows, cols = shape[1], shape[2]
	default:
		return "", fmt.Errorf("unexpected pixel array shape %v", shape)
	}
	return fmt.Sprintf("0,0,%d,%d", cols, rows), nil
}

// regionCoordinates reads one "x0,y0,x1,y1" per item of the named sequence.
func regionCoordinates(idx *deid.FieldIndex, field string) []string {
	var coordinates []string
	for _, f := range idx.Lookup(field) {
		for _, item := range f.Element.Items() {
			var values []string
			for _, keyword := range regionKeywords {
				elem, err := item.FindElementByName(keyword)
				if err != nil {
					break
				}
				v, err := elem.GetInt()
				if err != nil {
					break
				}
				values = append(values, fmt.Sprint(v))
			}
			if len(values) == len(regionKeywords) {
				coordinates = append(coordinates, strings.Join(values, ","))
			}
		}
	}
	return coordinates
}

// resolveCoordinates expands "all" and "from:<field>" specs. Specs that
// cannot be resolved are dropped with a warning.
func resolveCoordinates(file *dicom.File, idx *deid.FieldIndex, coordinates []Coordinate, logger *logrus.Entry) []Coordinate {
	var out []Coordinate
	for _, c := range coordinates {
		switch {
		case c.Spec == coordinatesAll:
			spec, err := allCoordinates(file.DataSet)
			if err != nil {
				logger.Warnf("Cannot expand coordinates all: %v", err)
				continue
			}
			out = append(out, Coordinate{MaskValue: c.MaskValue, Spec: spec})
		case strings.HasPrefix(c.Spec, coordinatesFrom):
			field := strings.TrimPrefix(c.Spec, coordinatesFrom)
			regions := regionCoordinates(idx, field)
			if len(regions) == 0 {
				logger.Warnf("No region coordinates found in %s", field)
			}
			for _, spec := range regions {
				out = append(out, Coordinate{MaskValue: c.MaskValue, Spec: spec})
			}
		default:
			out = append(out, c)
		}
	}
	return out
}
