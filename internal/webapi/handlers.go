package webapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/chat"
	"github.com/mobigenie/mobigenie/internal/domain"
	"github.com/mobigenie/mobigenie/internal/recommend"
)

// Handler serves the three public endpoints against the shared
// catalog snapshot, the recommendation core and the chat gateway.
type Handler struct {
	store   *catalog.Store
	matcher *recommend.Matcher
	engine  *recommend.Engine
	chat    chat.Gateway
}

func NewHandler(store *catalog.Store, matcher *recommend.Matcher, engine *recommend.Engine, gateway chat.Gateway) *Handler {
	return &Handler{store: store, matcher: matcher, engine: engine, chat: gateway}
}

// Register wires the endpoint routes.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/greet_user", h.GreetUser)
	e.POST("/get_model_details", h.GetModelDetails)
	e.POST("/ask_mistral", h.AskMistral)
}

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

type chatRequest struct {
	Query string `json:"query" validate:"required"`
}

type modelRequest struct {
	Model string `json:"model" validate:"required"`
}

type textResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type modelDetailsResponse struct {
	Response        domain.ProductCard     `json:"response"`
	SimilarProducts []domain.ProductCard   `json:"similar_products"`
	Accessories     []domain.AccessoryCard `json:"accessories"`
}

const greetingTemplate = `
Hi %s! 👋 I'm MobiGenie, your smart shopping buddy.

🎉 Welcome to MobiGenie Store! Let’s explore some gadgets.

💻 Laptops:
%s

📱 Smartphones:
%s

Let me know what you're interested in! 😊
`

// Every per-request failure renders as an {error} envelope with HTTP
// 200, callers check the error key on all three endpoints.
func respondErr(c echo.Context, err error) error {
	return c.JSON(http.StatusOK, errorResponse{Error: err.Error()})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}

// GreetUser assembles the store greeting listing the distinct laptop
// and smartphone model names of the current catalog.
func (h *Handler) GreetUser(c echo.Context) error {
	var req nameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondErr(c, err)
	}

	snap := h.store.Snapshot()
	greeting := fmt.Sprintf(greetingTemplate,
		req.Name,
		strings.Join(snap.Models(domain.CategoryLaptops), ", "),
		strings.Join(snap.Models(domain.CategorySmartphones), ", "),
	)
	return c.JSON(http.StatusOK, textResponse{Response: greeting})
}

// GetModelDetails resolves a free-text model query, then assembles
// the matched product, its price-band neighbours and the rule-table
// accessories into one envelope.
func (h *Handler) GetModelDetails(c echo.Context) error {
	var req modelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondErr(c, err)
	}

	query := domain.Normalize(req.Model)
	snap := h.store.Snapshot()

	product, score, err := h.matcher.Resolve(snap, query)
	if err != nil {
		if errors.Is(err, recommend.ErrNoMatch) {
			return c.JSON(http.StatusOK, errorResponse{
				Error: fmt.Sprintf("No similar product found for model: %s", req.Model),
			})
		}
		return respondErr(c, err)
	}
	zap.L().Info("model resolved",
		zap.String("query", query),
		zap.String("model", product.Model),
		zap.Float64("score", score),
	)

	similar := recommend.Recommend(product, snap)
	cards := make([]domain.ProductCard, 0, 4)
	for _, p := range similar.SameBrand {
		cards = append(cards, domain.NewProductCard("Same Brand Recommendation", p))
	}
	for _, p := range similar.OtherBrand {
		cards = append(cards, domain.NewProductCard("Other Brand Recommendation", p))
	}

	accessories := h.engine.Select(snap, query, product.Category, product.Brand)

	return c.JSON(http.StatusOK, modelDetailsResponse{
		Response:        domain.NewProductCard("", product),
		SimilarProducts: cards,
		Accessories:     accessories,
	})
}

// AskMistral forwards free text to the chat gateway. Upstream failure
// text is still a normal response, matching the reference behavior.
func (h *Handler) AskMistral(c echo.Context) error {
	var req chatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondErr(c, err)
	}

	text, err := h.chat.Ask(c.Request().Context(), req.Query)
	if err != nil {
		var upstream *chat.UpstreamChatError
		if errors.As(err, &upstream) {
			return c.JSON(http.StatusOK, textResponse{Response: upstream.Error()})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, textResponse{Response: text})
}
