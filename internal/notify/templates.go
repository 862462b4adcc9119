package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"storefront/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"title": func(s model.OrderStatus) string { return cases.Title(language.English).String(string(s)) },
	"greeting": func(name string) string {
		if name == "" {
			return "there"
		}
		return name
	},
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; color: #000000;">
  <h2 style="color: #000000; border-bottom: 2px solid #A7D8FF; padding-bottom: 10px;">Order Confirmation</h2>
  <p>Hi {{greeting .CustomerName}},</p>
  <p>Thank you for your order! We've received it and will process it shortly.</p>
  <div style="margin-top: 30px; padding: 20px; background-color: #F5F5F5; border-radius: 8px;">
    <h3 style="margin-top: 0;">Order Details</h3>
    <p><strong>Order Number:</strong> #{{.Order.ShortID}}</p>
    <p><strong>Order Date:</strong> {{.Order.CreatedAt.Format "January 2, 2006"}}</p>
    <p><strong>Status:</strong> {{title .Order.Status}}</p>
  </div>
  <div style="margin-top: 20px;">
    <h3>Order Items</h3>
    <table style="width: 100%; border-collapse: collapse;">
      {{- range .Order.Items}}
      <tr>
        <td style="padding: 10px; border-bottom: 1px solid #e0e0e0;">{{.Product.Name}} &times; {{.Quantity}}</td>
        <td style="padding: 10px; border-bottom: 1px solid #e0e0e0; text-align: right;">{{money .Subtotal}}</td>
      </tr>
      {{- end}}
      <tr>
        <td style="padding: 15px 10px; border-top: 2px solid #000000; font-weight: 600;">Total</td>
        <td style="padding: 15px 10px; border-top: 2px solid #000000; text-align: right; font-weight: 600;">{{money .Order.Total}}</td>
      </tr>
    </table>
  </div>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0; color: #666; font-size: 14px;">
    <p>We'll send you another email when your order ships.</p>
  </div>
</div>`))

	statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; color: #000000;">
  <h2 style="color: #000000; border-bottom: 2px solid #A7D8FF; padding-bottom: 10px;">Order Status Update</h2>
  <p>Hi {{greeting .CustomerName}},</p>
  <p>{{.Message}}</p>
  <div style="margin-top: 30px; padding: 20px; background-color: #F5F5F5; border-radius: 8px;">
    <h3 style="margin-top: 0;">Order Information</h3>
    <p><strong>Order Number:</strong> #{{.Order.ShortID}}</p>
    <p><strong>Status:</strong> {{title .Order.Status}}</p>
    <p><strong>Order Total:</strong> {{money .Order.Total}}</p>
  </div>
</div>`))

	contactTmpl = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #000000; border-bottom: 2px solid #A7D8FF; padding-bottom: 10px;">New Contact Form Submission</h2>
  <div style="margin-top: 20px;">
    <p><strong>From:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Subject:</strong> {{.Subject}}</p>
  </div>
  <div style="margin-top: 20px; padding: 15px; background-color: #F5F5F5; border-radius: 8px;">
    <p><strong>Message:</strong></p>
    <p style="white-space: pre-wrap;">{{.Message}}</p>
  </div>
</div>`))
)

type statusCopy struct {
	subject string
	message string
}

var statusMessages = map[model.OrderStatus]statusCopy{
	model.OrderStatusProcessing: {
		subject: "Your Order is Being Processed",
		message: "We've received your order and are preparing it for shipment.",
	},
	model.OrderStatusShipped: {
		subject: "Your Order Has Shipped!",
		message: "Great news! Your order has been shipped and is on its way to you.",
	},
	model.OrderStatusCompleted: {
		subject: "Your Order Has Been Delivered",
		message: "Your order has been completed. Thank you for your purchase!",
	},
	model.OrderStatusCancelled: {
		subject: "Order Cancellation",
		message: "Your order has been cancelled. If you have any questions, please contact us.",
	},
}

func statusInfo(status model.OrderStatus) statusCopy {
	if info, ok := statusMessages[status]; ok {
		return info
	}
	return statusCopy{
		subject: "Order Status Update",
		message: fmt.Sprintf("Your order status has been updated to %s.", status),
	}
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s e-mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// RenderOrderConfirmation builds the e-mail sent when an order is placed.
func RenderOrderConfirmation(to string, p model.OrderEmailPayload) (Message, error) {
	html, err := render(confirmationTmpl, p)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Order Confirmation #" + p.Order.ShortID(),
		HTML:    html,
	}, nil
}

// RenderOrderStatus builds the e-mail sent when an order changes status.
func RenderOrderStatus(to string, p model.OrderEmailPayload) (Message, error) {
	info := statusInfo(p.Order.Status)
	html, err := render(statusTmpl, struct {
		model.OrderEmailPayload
		Message string
	}{p, info.message})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s - Order #%s", info.subject, p.Order.ShortID()),
		HTML:    html,
	}, nil
}

// RenderContact builds the message forwarded to the shop inbox. Replies go
// to the sender.
func RenderContact(inbox string, req model.ContactRequest) (Message, error) {
	html, err := render(contactTmpl, req)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      inbox,
		ReplyTo: req.Email,
		Subject: "Contact Form: " + req.Subject,
		HTML:    html,
	}, nil
}

// Render turns an outbox row into a message.
func Render(n model.Notification) (Message, error) {
	var p model.OrderEmailPayload
	if err := decodePayload(n.Payload, &p); err != nil {
		return Message{}, err
	}

	switch n.Kind {
	case model.NotificationOrderConfirmation:
		return RenderOrderConfirmation(n.Recipient, p)
	case model.NotificationOrderStatus:
		return RenderOrderStatus(n.Recipient, p)
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
}
