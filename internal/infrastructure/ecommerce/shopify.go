// Package ecommerce pulls product catalogs from Shopify stores so client
// sites can mirror them.
package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	shopifyAPIVersion = "2024-04"
	shopifyPageSize   = 250
)

// ErrUnauthorized is returned when the store rejects the access token;
// callers park the connection in the error state until the token rotates.
var ErrUnauthorized = errors.New("shopify: access token rejected")

// Product is one catalog entry as the store reports it
type Product struct {
	ExternalID string
	Title      string
	Handle     string
	Price      string
	Currency   string
	Status     string
}

// ShopifyClient fetches catalog data through the Shopify Admin REST API
type ShopifyClient struct {
	httpClient *http.Client
}

// NewShopifyClient creates a new ShopifyClient
func NewShopifyClient() *ShopifyClient {
	return &ShopifyClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type shopifyShopResponse struct {
	Shop struct {
		Currency string `json:"currency"`
	} `json:"shop"`
}

type shopifyProductsResponse struct {
	Products []struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Handle   string `json:"handle"`
		Status   string `json:"status"`
		Variants []struct {
			Price string `json:"price"`
		} `json:"variants"`
	} `json:"products"`
}

// FetchProducts pulls the store's full catalog, following cursor pagination
func (c *ShopifyClient) FetchProducts(ctx context.Context, shopDomain, accessToken string) ([]Product, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("shopify: shop domain is required")
	}
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	currency, err := c.fetchCurrency(ctx, shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	var products []Product
	url := fmt.Sprintf("https://%s/admin/api/%s/products.json?limit=%d",
		shopDomain, shopifyAPIVersion, shopifyPageSize)
	for url != "" {
		body, next, err := c.get(ctx, url, accessToken)
		if err != nil {
			return nil, err
		}
		var page shopifyProductsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("shopify: failed to parse products: %w", err)
		}
		for _, p := range page.Products {
			price := ""
			if len(p.Variants) > 0 {
				price = p.Variants[0].Price
			}
			products = append(products, Product{
				ExternalID: strconv.FormatInt(p.ID, 10),
				Title:      p.Title,
				Handle:     p.Handle,
				Price:      price,
				Currency:   currency,
				Status:     p.Status,
			})
		}
		url = next
	}
	return products, nil
}

func (c *ShopifyClient) fetchCurrency(ctx context.Context, shopDomain, accessToken string) (string, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/shop.json", shopDomain, shopifyAPIVersion)
	body, _, err := c.get(ctx, url, accessToken)
	if err != nil {
		return "", err
	}
	var shop shopifyShopResponse
	if err := json.Unmarshal(body, &shop); err != nil {
		return "", fmt.Errorf("shopify: failed to parse shop: %w", err)
	}
	return shop.Shop.Currency, nil
}

var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

func (c *ShopifyClient) get(ctx context.Context, url, accessToken string) (body []byte, next string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", ErrUnauthorized
	case resp.StatusCode >= 400:
		return nil, "", fmt.Errorf("shopify: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Cursor pagination arrives in the Link header
	if link := resp.Header.Get("Link"); link != "" {
		if m := linkNextPattern.FindStringSubmatch(link); m != nil {
			next = m[1]
		}
	}
	return body, next, nil
}
