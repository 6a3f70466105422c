package invoice

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"hampr/models"
	"hampr/orders"
	"hampr/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var hmacSecret = []byte(secret())

func secret() string {
	if v := os.Getenv("INVOICE_HMAC_SECRET"); v != "" {
		return v
	}
	return "change_me_in_production"
}

// PickupPayload returns the signed QR payload: orderID|userID|signature.
func PickupPayload(orderID, userID string) string {
	data := fmt.Sprintf("%s|%s", orderID, userID)
	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

type Handlers struct {
	Orders *orders.Store
}

func NewHandlers(store *orders.Store) *Handlers {
	return &Handlers{Orders: store}
}

// PrintInvoice renders a PDF receipt for one of the caller's orders, with a
// signed pickup QR code.
func (h *Handlers) PrintInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	order, ok := h.Orders.Get(userID, ps.ByName("orderid"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	qrPNG, err := qrcode.Encode(PickupPayload(order.OrderID, userID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	buf, err := render(order, qrPNG)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+order.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func render(order models.Order, qrPNG []byte) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", order.OrderID))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Name: %s", order.Customer.Name))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Address: %s, %s %s", order.Customer.Address, order.Customer.City, order.Customer.PostalCode))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Placed: %s", order.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Items")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	for _, it := range order.Items {
		pdf.Cell(0, 6, fmt.Sprintf("%dx %s - %.2f", it.Quantity, it.Name, it.LineTotal()))
		pdf.Ln(5)
		if it.IsGift {
			for _, g := range it.GiftItems {
				pdf.Cell(0, 6, fmt.Sprintf("    %dx %s", g.Quantity, g.Name))
				pdf.Ln(5)
			}
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", order.Total))
	pdf.Ln(8)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
