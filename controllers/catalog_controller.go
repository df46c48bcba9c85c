package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// SupplierEmailRequest represents a message to a supplier
type SupplierEmailRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ListCustomers handles GET /api/v1/customers
func (h *Handler) ListCustomers(c *gin.Context) {
	page, limit := utils.PageParams(c, 20)
	customers, total, err := h.svc.Catalog.ListCustomers(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		respondError(c, err, "Failed to retrieve customers")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"customers":  customers,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.svc.Catalog.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve customer")
		return
	}
	utils.RespondWithData(c, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/customers
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.svc.Catalog.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create customer")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.svc.Catalog.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update customer")
		return
	}
	utils.RespondWithData(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Catalog.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete customer")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}

// ListMaterials handles GET /api/v1/materials
func (h *Handler) ListMaterials(c *gin.Context) {
	materials, err := h.svc.Catalog.ListMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve materials")
		return
	}
	utils.RespondWithData(c, http.StatusOK, materials)
}

// GetMaterial handles GET /api/v1/materials/:id
func (h *Handler) GetMaterial(c *gin.Context) {
	material, err := h.svc.Catalog.GetMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve material")
		return
	}
	utils.RespondWithData(c, http.StatusOK, material)
}

// CreateMaterial handles POST /api/v1/materials
func (h *Handler) CreateMaterial(c *gin.Context) {
	var req services.MaterialInput
	if !bindJSON(c, &req) {
		return
	}
	material, err := h.svc.Catalog.CreateMaterial(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create material")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, material)
}

// UpdateMaterial handles PUT /api/v1/materials/:id
func (h *Handler) UpdateMaterial(c *gin.Context) {
	var req services.MaterialInput
	if !bindJSON(c, &req) {
		return
	}
	material, err := h.svc.Catalog.UpdateMaterial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update material")
		return
	}
	utils.RespondWithData(c, http.StatusOK, material)
}

// DeleteMaterial handles DELETE /api/v1/materials/:id
func (h *Handler) DeleteMaterial(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Catalog.DeleteMaterial(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete material")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}

// ListSuppliers handles GET /api/v1/suppliers
func (h *Handler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.svc.Catalog.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve suppliers")
		return
	}
	utils.RespondWithData(c, http.StatusOK, suppliers)
}

// GetSupplier handles GET /api/v1/suppliers/:id
func (h *Handler) GetSupplier(c *gin.Context) {
	supplier, err := h.svc.Catalog.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve supplier")
		return
	}
	utils.RespondWithData(c, http.StatusOK, supplier)
}

// CreateSupplier handles POST /api/v1/suppliers
func (h *Handler) CreateSupplier(c *gin.Context) {
	var req services.SupplierInput
	if !bindJSON(c, &req) {
		return
	}
	supplier, err := h.svc.Catalog.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create supplier")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, supplier)
}

// UpdateSupplier handles PUT /api/v1/suppliers/:id
func (h *Handler) UpdateSupplier(c *gin.Context) {
	var req services.SupplierInput
	if !bindJSON(c, &req) {
		return
	}
	supplier, err := h.svc.Catalog.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update supplier")
		return
	}
	utils.RespondWithData(c, http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /api/v1/suppliers/:id - orders keep their history but lose the link
func (h *Handler) DeleteSupplier(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Catalog.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete supplier")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}

// EmailSupplier handles POST /api/v1/suppliers/:id/email - sends a message through the mail relay
func (h *Handler) EmailSupplier(c *gin.Context) {
	var req SupplierEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	supplier, err := h.svc.Catalog.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve supplier")
		return
	}
	if !utils.IsValidEmail(supplier.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "INVALID_EMAIL", "Supplier has no valid email address")
		return
	}

	msg := services.MailMessage{
		SenderName:  h.svc.Config.MailSenderName,
		SenderEmail: h.svc.Config.MailSender,
		To:          supplier.Email,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        fmt.Sprintf("Dear %s,\n\n%s", supplier.Name, strings.TrimSpace(req.Message)),
	}
	if err := h.svc.Mailer.Send(c.Request.Context(), msg); err != nil {
		log.Printf("[mail] failed to email supplier %s: %v", supplier.ID, err)
		utils.RespondWithError(c, http.StatusBadGateway, "MAIL_FAILED", "Failed to send email", err.Error())
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{"to": supplier.Email})
}
