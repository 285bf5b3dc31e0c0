package web

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vitrina/internal/catalog"
	"vitrina/internal/models"
	"vitrina/internal/storage"
)

const (
	msgAdminProductNotFound = "Продукт не найден"
	msgUnsupportedImage     = "Неподдерживаемый формат изображения"
	msgUploadTooLarge       = "Слишком большой размер загрузки"
)

// productForm is the text part of the add and edit forms.
type productForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
}

func (f productForm) draft() (catalog.Draft, error) {
	price, err := catalog.ParsePrice(f.Price)
	if err != nil {
		return catalog.Draft{}, err
	}
	return catalog.Draft{Name: f.Name, Description: f.Description, Price: price}, nil
}

func formOf(p *models.Product) productForm {
	return productForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       catalog.FormatPrice(p.Price),
	}
}

func (s *Server) adminRoutes(r *gin.RouterGroup) {
	r.GET("", s.adminProducts)
	r.GET("/products", s.adminProducts)

	upload := limitBody(int64(s.cfg.MaxUploadMB) << 20)
	r.GET("/add-product", s.addProductPage)
	r.POST("/add-product", upload, s.addProduct)
	r.GET("/edit-product/:id", s.editProductPage)
	r.POST("/edit-product/:id", upload, s.editProduct)
	r.POST("/delete-product/:id", s.deleteProduct)
}

func (s *Server) adminProducts(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "admin_products.tmpl", s.withAdmin(c, ViewData{
		"Title":    "Управление товарами",
		"Products": products,
	}))
}

func (s *Server) addProductPage(c *gin.Context) {
	s.renderAddForm(c, http.StatusOK, productForm{}, "")
}

func (s *Server) renderAddForm(c *gin.Context, status int, form productForm, message string) {
	c.HTML(status, "admin_add_product.tmpl", s.withAdmin(c, ViewData{
		"Title": "Новый товар",
		"Form":  form,
		"Error": message,
	}))
}

func (s *Server) addProduct(c *gin.Context) {
	var form productForm
	files, err := bindProductForm(c, &form, "images")
	if status, message := formFailure(err); message != "" {
		s.renderAddForm(c, status, form, message)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	d, err := form.draft()
	if err == nil {
		_, err = s.catalog.CreateProduct(c.Request.Context(), d, files)
	}
	if status, message := formFailure(err); message != "" {
		s.renderAddForm(c, status, form, message)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/products")
}

func (s *Server) editProductPage(c *gin.Context) {
	product, ok := s.loadProduct(c)
	if !ok {
		return
	}
	s.renderEditForm(c, http.StatusOK, product, formOf(product), "")
}

func (s *Server) renderEditForm(c *gin.Context, status int, product *models.Product, form productForm, message string) {
	c.HTML(status, "admin_edit_product.tmpl", s.withAdmin(c, ViewData{
		"Title":   "Редактирование товара",
		"Product": product,
		"Form":    form,
		"Error":   message,
	}))
}

func (s *Server) editProduct(c *gin.Context) {
	product, ok := s.loadProduct(c)
	if !ok {
		return
	}

	var form productForm
	files, err := bindProductForm(c, &form, "new_images")
	if status, message := formFailure(err); message != "" {
		s.renderEditForm(c, status, product, form, message)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	deleteIDs, err := parseIDs(c.PostFormArray("delete_images"))
	if err != nil {
		s.renderEditForm(c, http.StatusBadRequest, product, form, "Неверный идентификатор изображения")
		return
	}

	d, err := form.draft()
	if err == nil {
		_, err = s.catalog.UpdateProduct(c.Request.Context(), product.ID, d, deleteIDs, files)
	}
	if errors.Is(err, models.ErrProductNotFound) {
		s.notFound(c, msgAdminProductNotFound)
		return
	}
	if status, message := formFailure(err); message != "" {
		s.renderEditForm(c, status, product, form, message)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		s.notFound(c, msgAdminProductNotFound)
		return
	}
	err := s.catalog.DeleteProduct(c.Request.Context(), id)
	if errors.Is(err, models.ErrProductNotFound) {
		s.notFound(c, msgAdminProductNotFound)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

// loadProduct resolves :id or writes the 404 page.
func (s *Server) loadProduct(c *gin.Context) (*models.Product, bool) {
	id, ok := parseID(c)
	if !ok {
		s.notFound(c, msgAdminProductNotFound)
		return nil, false
	}
	product, err := s.catalog.GetProduct(c.Request.Context(), id)
	if errors.Is(err, models.ErrProductNotFound) {
		s.notFound(c, msgAdminProductNotFound)
		return nil, false
	}
	if err != nil {
		s.internalError(c, err)
		return nil, false
	}
	return product, true
}

// bindProductForm fills form and returns the uploads of fileField.
// A urlencoded body is accepted and carries no files.
func bindProductForm(c *gin.Context, form *productForm, fileField string) ([]*multipart.FileHeader, error) {
	mf, err := c.MultipartForm()
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		mf = nil
	case err != nil:
		return nil, err
	}
	if err := c.ShouldBind(form); err != nil {
		return nil, err
	}
	if mf == nil {
		return nil, nil
	}
	return mf.File[fileField], nil
}

// formFailure maps an error to the status and message shown on a form.
// An empty message means the error is not the user's fault.
func formFailure(err error) (int, string) {
	var inputErr *catalog.InputError
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return 0, ""
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Message
	case errors.Is(err, storage.ErrUnsupportedImage):
		return http.StatusBadRequest, msgUnsupportedImage
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgUploadTooLarge
	default:
		return http.StatusInternalServerError, ""
	}
}

func parseIDs(raw []string) ([]uint, error) {
	ids := make([]uint, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// limitBody caps the request body at n bytes.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
