package dto

// StatusResponse is the envelope returned by mutating endpoints and by every error.
type StatusResponse struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// AddFaceRequest is the JSON form of /add_face; image_data is base64, optionally a data URL.
type AddFaceRequest struct {
	Name      string `json:"name"`
	ImageData string `json:"image_data"`
}

// DetectFaceRequest is the JSON form of /detect_face: either an image or a stream to grab a frame from.
type DetectFaceRequest struct {
	ImageData string `json:"image_data"`
	RTSPURL   string `json:"rtsp_url"`
}

// DetectFaceResponse lists face boxes as [top, right, bottom, left] with names in the same order.
type DetectFaceResponse struct {
	Success   bool     `json:"success"`
	Locations [][4]int `json:"locations"`
	Names     []string `json:"names"`
}

// GalleryResponse lists enrolled names in iteration order.
type GalleryResponse struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}
