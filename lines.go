package paperlayout

import (
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
)

const (
	borderTolerance   = 20.0 // points from the page edge
	fullSpanThreshold = 0.90 // share of the page dimension
	rulingThickness   = 2.0
)

// pageRulings collects the horizontal and vertical rulings drawn as path
// objects on a page. Page borders are dropped so that a framed page is not
// taken for a table.
func pageRulings(instance pdfium.Pdfium, page references.FPDF_PAGE, pageWidth, pageHeight float64) ([]Edge, error) {
	countResp, err := instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for i := 0; i < countResp.Count; i++ {
		objResp, err := instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page:  requests.Page{ByReference: &page},
			Index: i,
		})
		if err != nil {
			continue
		}

		typeResp, err := instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: objResp.PageObject,
		})
		if err != nil || typeResp.Type != enums.FPDF_PAGEOBJ_PATH {
			continue
		}

		boundsResp, err := instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		segResp, err := instance.FPDFPath_CountSegments(&requests.FPDFPath_CountSegments{
			PageObject: objResp.PageObject,
		})
		if err != nil || segResp.Count < 2 {
			continue
		}

		// PDF space has its origin bottom-left.
		box := Rect{
			X0: float64(boundsResp.Left),
			Y0: pageHeight - float64(boundsResp.Top),
			X1: float64(boundsResp.Right),
			Y1: pageHeight - float64(boundsResp.Bottom),
		}

		var found []Edge
		switch {
		case segResp.Count == 2:
			if edge, ok := pathToEdge(box); ok {
				found = append(found, edge)
			}
		case segResp.Count >= 4:
			found = boxEdges(box)
		}
		for _, edge := range found {
			if !isPageBorder(edge, pageWidth, pageHeight) {
				edges = append(edges, edge)
			}
		}
	}

	return edges, nil
}

// isPageBorder reports rulings hugging the page edge or spanning nearly the
// whole page.
func isPageBorder(edge Edge, pageWidth, pageHeight float64) bool {
	switch edge.Orientation {
	case "h":
		return edge.Top < borderTolerance || edge.Top > pageHeight-borderTolerance ||
			edge.Width > pageWidth*fullSpanThreshold
	case "v":
		return edge.X0 < borderTolerance || edge.X0 > pageWidth-borderTolerance ||
			edge.Height > pageHeight*fullSpanThreshold
	}
	return false
}

// pathToEdge turns a thin path box into a ruling.
func pathToEdge(box Rect) (Edge, bool) {
	width, height := box.Width(), box.Height()
	edge := Edge{X0: box.X0, X1: box.X1, Top: box.Y0, Bottom: box.Y1, Width: width, Height: height}
	switch {
	case height < rulingThickness && width > 1:
		edge.Orientation = "h"
	case width < rulingThickness && height > 1:
		edge.Orientation = "v"
	default:
		return Edge{}, false
	}
	return edge, true
}

// boxEdges returns the four sides of a rectangle path.
func boxEdges(box Rect) []Edge {
	return []Edge{
		{X0: box.X0, X1: box.X1, Top: box.Y0, Bottom: box.Y0, Width: box.Width(), Orientation: "h"},
		{X0: box.X0, X1: box.X1, Top: box.Y1, Bottom: box.Y1, Width: box.Width(), Orientation: "h"},
		{X0: box.X0, X1: box.X0, Top: box.Y0, Bottom: box.Y1, Height: box.Height(), Orientation: "v"},
		{X0: box.X1, X1: box.X1, Top: box.Y0, Bottom: box.Y1, Height: box.Height(), Orientation: "v"},
	}
}
