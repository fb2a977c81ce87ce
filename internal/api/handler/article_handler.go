package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/articlehub/content-service/internal/api/metrics"
	"github.com/articlehub/content-service/internal/core/ports"
)

const dateLayout = "2006-01-02"

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	service ports.ArticleService
}

func NewArticleHandler(service ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// Create handles POST /article.
//
// @Summary      Create an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createArticleRequest  true  "Article"
// @Success      201   {object}  domain.Article
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /article [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	article, err := h.service.Create(c.Request().Context(), actor, ports.CreateArticleInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	metrics.ArticlesWrittenTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, article)
}

// List handles GET /article.
//
// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 5, max 100)"
// @Param        username  query     string  false  "Author username"
// @Param        date      query     string  false  "Creation day, format 2024-01-21"
// @Success      200       {array}   domain.ArticleView
// @Failure      400       {object}  map[string]string
// @Router       /article [get]
func (h *ArticleHandler) List(c echo.Context) error {
	var (
		in   ports.ListArticlesInput
		date time.Time
	)
	err := echo.QueryParamsBinder(c).
		Int("page", &in.Page).
		Int("limit", &in.Limit).
		String("username", &in.Username).
		Time("date", &date, dateLayout).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	in.Date = date

	articles, err := h.service.List(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

// Get handles GET /article/:id.
//
// @Summary      Get an article
// @Tags         articles
// @Produce      json
// @Param        id   path      int  true  "Article ID"
// @Success      200  {object}  domain.ArticleView
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /article/{id} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	id, err := articleID(c)
	if err != nil {
		return err
	}

	article, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, article)
}

// Update handles PUT /article/:id.
//
// @Summary      Update an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Article ID"
// @Param        body  body      updateArticleRequest  true  "Fields to change"
// @Success      200   {object}  domain.Article
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /article/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := articleID(c)
	if err != nil {
		return err
	}

	var req updateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	article, err := h.service.Update(c.Request().Context(), actor, id, ports.UpdateArticleInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	metrics.ArticlesWrittenTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /article/:id.
//
// @Summary      Delete an article
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Article ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /article/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := articleID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}

	metrics.ArticlesWrittenTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, map[string]string{"details": "article deleted"})
}

func articleID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "article id must be an integer")
	}
	return id, nil
}
