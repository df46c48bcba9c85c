package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// SendMailRequest represents the relay's form fields
type SendMailRequest struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	To      string `form:"to"`
	Subject string `form:"subject"`
	Message string `form:"message"`
}

func mailResponse(c *gin.Context, status int, success bool, message string) {
	c.JSON(status, gin.H{
		"success": success,
		"message": message,
	})
}

// SendMail handles POST /api/v1/mail/send - relays a form message to a supplier
// Replies with {success, message} rather than the data envelope; the console's mail form reads that shape
func (h *Handler) SendMail(c *gin.Context) {
	var req SendMailRequest
	if err := c.ShouldBind(&req); err != nil {
		mailResponse(c, http.StatusBadRequest, false, "Invalid form data")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.To = strings.TrimSpace(req.To)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.To == "" || req.Subject == "" || req.Message == "" {
		mailResponse(c, http.StatusBadRequest, false, "All fields are required")
		return
	}
	if !utils.IsValidEmail(req.Email) || !utils.IsValidEmail(req.To) {
		mailResponse(c, http.StatusBadRequest, false, "Invalid email address")
		return
	}

	err := h.svc.Mailer.Send(c.Request.Context(), services.MailMessage{
		SenderName:  req.Name,
		SenderEmail: req.Email,
		To:          req.To,
		Subject:     req.Subject,
		Body:        req.Message,
	})
	if err != nil {
		log.Printf("[mail] relay to %s failed: %v", req.To, err)
		mailResponse(c, http.StatusInternalServerError, false, "Email sending failed: "+err.Error())
		return
	}

	log.Printf("[mail] relayed message from %s to %s", req.Email, req.To)
	mailResponse(c, http.StatusOK, true, "Email sent successfully to "+req.To)
}
