package service

import (
	"strings"

	"sifs_backend/internals/features/certificates/scene"
	"sifs_backend/internals/features/certificates/verification/model"
)

type HAnchor string

const (
	AnchorCenter HAnchor = "center"
	AnchorLeft   HAnchor = "left"
	AnchorRight  HAnchor = "right"
)

type VAnchor string

const (
	AnchorTop    VAnchor = "top"
	AnchorBottom VAnchor = "bottom"
)

type TextStyle struct {
	Color      string  `json:"color"`
	FontSizePx float64 `json:"font_size_px"`
	FontWeight int     `json:"font_weight"`
	FontFamily string  `json:"font_family"`
	TextShadow string  `json:"text_shadow,omitempty"`
	Underline  bool    `json:"underline,omitempty"`
}

// Overlay is one text field placed by percentages of the native canvas.
// For AnchorCenter, XPct is the center line; otherwise it is the distance
// from the anchored edge.
type Overlay struct {
	Role    string    `json:"role"`
	Text    string    `json:"text"`
	HAnchor HAnchor   `json:"h_anchor"`
	XPct    float64   `json:"x_pct"`
	VAnchor VAnchor   `json:"v_anchor"`
	YPct    float64   `json:"y_pct"`
	Style   TextStyle `json:"style"`
}

const (
	serifFamily = "Georgia, 'Times New Roman', serif"
	sansFamily  = "Arial, Helvetica, sans-serif"

	darkText   = "#1f2937"
	blackText  = "#000000"
	whiteText  = "#ffffff"
	nameShadow = "2px 2px 4px rgba(0, 0, 0, 0.6)"
)

// PlaceOverlays applies the placement table tuned against the template artwork.
// The same input always yields the same overlays.
func PlaceOverlays(cert model.CertificateRecord, tpl model.TemplateDescriptor) []Overlay {
	name := strings.TrimSpace(cert.Name)
	number := strings.TrimSpace(cert.CertificateNumber)

	if tpl.Orientation == model.OrientationVertical {
		return []Overlay{
			{
				Role: scene.RoleName, Text: name,
				HAnchor: AnchorCenter, XPct: 50, VAnchor: AnchorTop, YPct: 45,
				Style: TextStyle{Color: darkText, FontSizePx: 34, FontWeight: 700, FontFamily: serifFamily},
			},
			{
				Role: scene.RoleNumber, Text: number,
				HAnchor: AnchorRight, XPct: 35, VAnchor: AnchorBottom, YPct: 7,
				Style: TextStyle{Color: darkText, FontSizePx: 16, FontWeight: 600, FontFamily: sansFamily},
			},
		}
	}

	if !cert.IsQuiz() {
		return []Overlay{
			{
				Role: scene.RoleName, Text: name,
				HAnchor: AnchorCenter, XPct: 50, VAnchor: AnchorTop, YPct: 24,
				Style: TextStyle{Color: whiteText, FontSizePx: 40, FontWeight: 700, FontFamily: serifFamily, TextShadow: nameShadow},
			},
			{
				Role: scene.RoleNumber, Text: number,
				HAnchor: AnchorCenter, XPct: 50, VAnchor: AnchorBottom, YPct: 11,
				Style: TextStyle{Color: blackText, FontSizePx: 18, FontWeight: 600, FontFamily: sansFamily},
			},
		}
	}

	out := []Overlay{
		{
			Role: scene.RoleName, Text: name,
			HAnchor: AnchorCenter, XPct: 50, VAnchor: AnchorTop, YPct: 44,
			Style: TextStyle{Color: darkText, FontSizePx: 36, FontWeight: 700, FontFamily: serifFamily, Underline: true},
		},
		{
			Role: scene.RoleNumber, Text: number,
			HAnchor: AnchorRight, XPct: 10, VAnchor: AnchorBottom, YPct: 12,
			Style: TextStyle{Color: darkText, FontSizePx: 16, FontWeight: 600, FontFamily: sansFamily},
		},
	}
	if date := cert.DisplayDate(); date != "" {
		out = append(out, Overlay{
			Role: scene.RoleDate, Text: date,
			HAnchor: AnchorLeft, XPct: 10, VAnchor: AnchorBottom, YPct: 12,
			Style: TextStyle{Color: darkText, FontSizePx: 16, FontWeight: 600, FontFamily: sansFamily},
		})
	}
	return out
}
