package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Ack is the message/status pair returned by write endpoints.
type Ack struct {
	Message string
	Status  string
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.postJSON(ctx, "Authentication/LoginWeb", credentials{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	env, err := parseEnvelope[string](body)
	if err != nil {
		return "", err
	}
	token, err := env.decodeData()
	if err != nil {
		return "", fmt.Errorf("%w: token is not a string", ErrInvalidReply)
	}
	if token == "" {
		return "", &APIError{StatusCode: statusCode(env.Status), Message: env.Message}
	}
	return token, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (Ack, error) {
	return c.postAck(ctx, "User/create", reg)
}

func (c *Client) VerifyEmail(ctx context.Context, email, otp string) (Ack, error) {
	return c.postAck(ctx, "User/verify-email", map[string]string{"email": email, "otp": otp})
}

func (c *Client) ResendOTP(ctx context.Context, email string) (Ack, error) {
	return c.postAck(ctx, "User/ResentOTP", map[string]string{"email": email})
}

func (c *Client) postAck(ctx context.Context, path string, payload any) (Ack, error) {
	body, err := c.postJSON(ctx, path, payload)
	if err != nil {
		return Ack{}, err
	}
	env, err := parseEnvelope[json.RawMessage](body)
	if err != nil {
		return Ack{}, err
	}
	return Ack{Message: env.Message, Status: string(env.Status)}, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	return getList[domain.Product](ctx, c, "Product/GetAllProducts", nil)
}

// Category returns the category name for id.
func (c *Client) Category(ctx context.Context, id string) (string, error) {
	return getValue[string](ctx, c, "Category/GetbyId", url.Values{"categoryId": {id}})
}

// ProductImage is an optional upload attached to AddProduct.
type ProductImage struct {
	Filename string
	Content  io.Reader
}

// AddProduct posts the product as a multipart form: a "product" JSON field
// plus an optional "imageFile" part.
func (c *Client) AddProduct(ctx context.Context, p domain.NewProduct, image *ProductImage) (*domain.Product, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product failed: %w", err)
	}
	if err := w.WriteField("product", string(payload)); err != nil {
		return nil, err
	}
	if image != nil && image.Content != nil {
		part, err := w.CreateFormFile("imageFile", image.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, image.Content); err != nil {
			return nil, fmt.Errorf("copy image failed: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, "Product/AddProduct", nil, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope[domain.Product](body)
	if err != nil {
		return nil, err
	}
	product, err := env.decodeData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return &product, nil
}

type saleLinePayload struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type salePayload struct {
	UserID      string            `json:"userId"`
	SaleDetails []saleLinePayload `json:"saleDetails"`
}

// AddSale submits a sale. A reply the backend sends with a 2xx status is
// returned as-is; deciding whether it means success is up to the caller.
func (c *Client) AddSale(ctx context.Context, req *domain.SaleRequest) (*domain.SaleResult, error) {
	payload := salePayload{UserID: req.UserID, SaleDetails: make([]saleLinePayload, len(req.Lines))}
	for i, line := range req.Lines {
		payload.SaleDetails[i] = saleLinePayload{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice.InexactFloat64(),
		}
	}

	body, err := c.postJSON(ctx, "Sale/AddSale", payload)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope[json.RawMessage](body)
	if err != nil {
		return nil, err
	}

	result := &domain.SaleResult{Message: env.Message, Status: string(env.Status)}
	var data struct {
		SaleID string `json:"saleId"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil {
		result.SaleID = data.SaleID
	}
	return result, nil
}

func (c *Client) Sales(ctx context.Context) ([]domain.Sale, error) {
	return getList[domain.Sale](ctx, c, "Sale/GetAllSales", nil)
}

func (c *Client) SalesByUser(ctx context.Context, userID string) ([]domain.Sale, error) {
	return getList[domain.Sale](ctx, c, "Sale/GetSaleByUserId", url.Values{"userId": {userID}})
}

func (c *Client) SaleDetails(ctx context.Context, saleID string) ([]domain.SaleDetail, error) {
	return getList[domain.SaleDetail](ctx, c, "SaleDetails/GetSaleDetailBySaleId", url.Values{"saleId": {saleID}})
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	return getList[domain.User](ctx, c, "User/GetAllUsers", nil)
}

// RoleByUser returns the role name for userID.
func (c *Client) RoleByUser(ctx context.Context, userID string) (string, error) {
	return getValue[string](ctx, c, "User/GetRoleByUserId", url.Values{"userId": {userID}})
}
