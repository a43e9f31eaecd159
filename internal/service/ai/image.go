package ai

import (
	"fmt"
	"image"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// DecodeImage decodes encoded image bytes into a BGR Mat. The caller owns the returned Mat.
func DecodeImage(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty input", model.ErrDecode)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: decoded image is empty", model.ErrDecode)
	}
	return mat, nil
}

// EncodeJPEG encodes a frame as JPEG with the given quality (1-100, 0 keeps the OpenCV default).
func EncodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	var (
		buf *gocv.NativeByteBuffer
		err error
	)
	if quality > 0 {
		buf, err = gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), quality})
	} else {
		buf, err = gocv.IMEncode(gocv.JPEGFileExt, frame)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// encodePNG is used for gallery references, which must survive a round trip without loss.
func encodePNG(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Resize scales a frame to width x height. The caller owns the returned Mat.
// Non-positive dimensions return an unscaled copy.
func Resize(frame gocv.Mat, width, height int) gocv.Mat {
	dst := gocv.NewMat()
	if width <= 0 || height <= 0 || (frame.Cols() == width && frame.Rows() == height) {
		frame.CopyTo(&dst)
		return dst
	}
	gocv.Resize(frame, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst
}

// clip limits r to the frame bounds.
func clip(r image.Rectangle, frame gocv.Mat) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
}

// largest returns the rectangle with the biggest area.
func largest(rects []image.Rectangle) image.Rectangle {
	var best image.Rectangle
	for _, r := range rects {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}
	return best
}
