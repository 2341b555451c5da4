package service

// ViewState tracks the preview: the scale and the template image fetch,
// which is independent of the verification fetch.
type ViewState struct {
	Scale        float64 `json:"scale"`
	ImageLoading bool    `json:"image_loading"`
	ImageError   bool    `json:"image_error"`
}

func NewViewState(scale float64) ViewState {
	return ViewState{Scale: scale, ImageLoading: true}
}

func (v *ViewState) BeginImageLoad() {
	v.ImageLoading = true
	v.ImageError = false
}

func (v *ViewState) ImageLoaded() {
	v.ImageLoading = false
	v.ImageError = false
}

func (v *ViewState) ImageFailed() {
	v.ImageLoading = false
	v.ImageError = true
}

// RetryImage resets the flags so the image is fetched again; the
// verification itself is not repeated.
func (v *ViewState) RetryImage() {
	v.BeginImageLoad()
}

// OverlaysVisible gates text so it never shows over a blank or broken canvas.
func (v ViewState) OverlaysVisible() bool {
	return !v.ImageLoading && !v.ImageError
}

func (v ViewState) CanExport() bool {
	return v.OverlaysVisible()
}
