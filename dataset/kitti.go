// Package dataset - Ground-truth dataset loading for evaluation runs.
package dataset

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-eval/eval"
)

// kittiLabelFields is the field count of a well-formed KITTI label line.
// Lines with fewer fields are skipped individually, never failing the
// whole sample.
const kittiLabelFields = 15

// KITTI serves a KITTI-layout dataset: a directory of .png images and a
// parallel directory of per-image label files. Images are decoded lazily,
// one sample at a time.
type KITTI struct {
	imageDir string
	labelDir string
	files    []string
}

// OpenKITTI lists the image directory and returns a dataset over its .png
// files in sorted order. The label directory is only touched when samples
// are loaded.
//
// Arguments:
//   - imageDir: Directory containing .png images.
//   - labelDir: Directory containing matching .txt label files.
//
// Returns:
//   - *KITTI: The dataset.
//   - error: An error if the image directory cannot be listed or holds no
//     images.
func OpenKITTI(imageDir, labelDir string) (*KITTI, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image directory")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".png" {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no .png images found in %s", imageDir)
	}
	sort.Strings(files)

	return &KITTI{
		imageDir: imageDir,
		labelDir: labelDir,
		files:    files,
	}, nil
}

// Len returns the number of images in the dataset.
func (d *KITTI) Len() int { return len(d.files) }

// ImageFile returns the image filename at index i.
func (d *KITTI) ImageFile(i int) string { return d.files[i] }

// Sample decodes the image at index i and parses its label file.
//
// The image is read with OpenCV and converted from BGR to RGB before being
// handed to the detector. A missing or undecodable image fails this sample
// only; the evaluation driver skips it and continues.
func (d *KITTI) Sample(i int) (*eval.Sample, error) {
	name := d.files[i]

	mat := gocv.IMRead(filepath.Join(d.imageDir, name), gocv.IMReadColor)
	if mat.Empty() {
		return nil, errors.Errorf("failed to decode image %s", name)
	}
	defer mat.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	img, err := rgb.ToImage()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert image %s", name)
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	boxes, classes, err := ParseLabelFile(filepath.Join(d.labelDir, base+".txt"))
	if err != nil {
		return nil, err
	}

	return &eval.Sample{
		Image:   img,
		Boxes:   boxes,
		Classes: classes,
	}, nil
}

// ParseLabelFile reads a KITTI label file and returns the annotated boxes
// with their class names, aligned by index.
//
// Each line is "class truncated occluded alpha x1 y1 x2 y2 ..." with 15
// fields. Malformed lines, including ones whose coordinates fail to parse,
// are skipped silently at line granularity.
func ParseLabelFile(path string) ([]eval.BoundingBox, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open label file")
	}
	defer f.Close()

	var boxes []eval.BoundingBox
	var classes []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < kittiLabelFields {
			continue
		}

		coords := make([]float32, 4)
		ok := true
		for j := 0; j < 4; j++ {
			v, parseErr := strconv.ParseFloat(fields[4+j], 32)
			if parseErr != nil {
				ok = false
				break
			}
			coords[j] = float32(v)
		}
		if !ok {
			continue
		}

		boxes = append(boxes, eval.BoundingBox{
			X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3],
		})
		classes = append(classes, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read label file")
	}

	return boxes, classes, nil
}
