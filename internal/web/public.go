package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vitrina/internal/auth"
	"vitrina/internal/models"
)

const msgProductNotFound = "Товар не найден"

func (s *Server) publicRoutes(r gin.IRouter) {
	r.GET("/", s.homePage)
	r.GET("/products", s.productList)
	r.GET("/products/:id", s.productDetail)
	r.GET("/contacts", s.contactPage)
}

func (s *Server) authRoutes(r gin.IRouter) {
	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/logout", s.logout)
}

func (s *Server) homePage(c *gin.Context) {
	c.HTML(http.StatusOK, "homepage.tmpl", s.withAdmin(c, nil))
}

func (s *Server) contactPage(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.tmpl", s.withAdmin(c, ViewData{
		"Title":   "Контакты",
		"Contact": s.cfg.Contact,
	}))
}

func (s *Server) productList(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "products.tmpl", s.withAdmin(c, ViewData{
		"Title":    "Каталог",
		"Products": products,
	}))
}

func (s *Server) productDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.notFound(c, msgProductNotFound)
		return
	}
	product, err := s.catalog.GetProduct(c.Request.Context(), id)
	if errors.Is(err, models.ErrProductNotFound) {
		s.notFound(c, msgProductNotFound)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "product_detail.tmpl", s.withAdmin(c, ViewData{
		"Title":   product.Name,
		"Product": product,
	}))
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", s.withAdmin(c, ViewData{"Title": "Вход", "Username": ""}))
}

func (s *Server) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.tmpl", s.withAdmin(c, ViewData{
			"Title": "Вход", "Username": form.Username, "Error": "Заполните все поля",
		}))
		return
	}

	_, err := s.admins.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		c.HTML(http.StatusUnauthorized, "login.tmpl", s.withAdmin(c, ViewData{
			"Title": "Вход", "Username": form.Username, "Error": "Неверные данные",
		}))
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	if err := auth.Login(c); err != nil {
		s.internalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (s *Server) logout(c *gin.Context) {
	if err := auth.Logout(c); err != nil {
		s.internalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// parseID reads the :id path parameter; anything that is not a positive
// integer cannot name a product.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
