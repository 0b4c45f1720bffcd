package builders

import (
	"fmt"
	"strings"
)

// EmailBuilder assembles the HTML documents the reminder templates send.
type EmailBuilder struct {
	header     string
	content    []string
	brandName  string
	brandColor string
}

// NewEmailBuilder creates a new email builder with default styling
func NewEmailBuilder(brandName, brandColor string) *EmailBuilder {
	if brandName == "" {
		brandName = "Daylog"
	}
	if brandColor == "" {
		brandColor = "#4F46E5" // Default indigo color
	}

	return &EmailBuilder{
		brandName:  brandName,
		brandColor: brandColor,
		content:    make([]string, 0),
	}
}

// SetHeader sets the email header
func (b *EmailBuilder) SetHeader(title string, subtitle string) *EmailBuilder {
	subtitleHTML := ""
	if subtitle != "" {
		subtitleHTML = fmt.Sprintf(`<p style="margin: 10px 0 0 0; font-size: 16px; opacity: 0.95;">%s</p>`, subtitle)
	}
	b.header = fmt.Sprintf(`
		<div class="header">
			<h1 style="margin: 0; font-size: 28px;">%s</h1>
			%s
		</div>
	`, title, subtitleHTML)
	return b
}

// AddSection adds a titled content section
func (b *EmailBuilder) AddSection(title string, content string) *EmailBuilder {
	section := fmt.Sprintf(`
		<div class="section">
			<h2 style="color: %s; font-size: 20px; margin-bottom: 15px;">%s</h2>
			<div class="section-content">%s</div>
		</div>
	`, b.brandColor, title, content)
	b.content = append(b.content, section)
	return b
}

// AddInfoBox adds a highlighted box for the important details
func (b *EmailBuilder) AddInfoBox(content string, boxType string) *EmailBuilder {
	var bgColor, borderColor string
	switch boxType {
	case "warning":
		bgColor = "#FEF3C7"
		borderColor = "#92400E"
	case "info":
		bgColor = "#DBEAFE"
		borderColor = "#1E40AF"
	default:
		bgColor = "#F3F4F6"
		borderColor = "#6B7280"
	}

	infoBox := fmt.Sprintf(`
		<div style="background-color: %s; border-left: 4px solid %s; padding: 15px; margin: 20px 0; border-radius: 4px;">
			%s
		</div>
	`, bgColor, borderColor, content)
	b.content = append(b.content, infoBox)
	return b
}

// AddDetailsList adds a key-value details table
func (b *EmailBuilder) AddDetailsList(details [][2]string) *EmailBuilder {
	var items []string
	for _, kv := range details {
		items = append(items, fmt.Sprintf(`
			<tr>
				<td style="padding: 8px 12px; font-weight: bold; color: #4B5563;">%s:</td>
				<td style="padding: 8px 12px; color: #1F2937;">%s</td>
			</tr>
		`, kv[0], kv[1]))
	}

	detailsList := fmt.Sprintf(`
		<table style="width: 100%%; border-collapse: collapse; margin: 15px 0;">
			%s
		</table>
	`, strings.Join(items, ""))
	b.content = append(b.content, detailsList)
	return b
}

// AddDivider adds a horizontal divider
func (b *EmailBuilder) AddDivider() *EmailBuilder {
	b.content = append(b.content, `<hr style="border: none; border-top: 1px solid #E5E7EB; margin: 30px 0;">`)
	return b
}

// AddParagraph adds a simple paragraph
func (b *EmailBuilder) AddParagraph(text string) *EmailBuilder {
	b.content = append(b.content, fmt.Sprintf(`<p style="line-height: 1.6; color: #4B5563; margin: 15px 0;">%s</p>`, text))
	return b
}

// Build constructs the final HTML document
func (b *EmailBuilder) Build() string {
	footer := fmt.Sprintf(`
		<div class="footer">
			<p>Thank you for using %s!</p>
			<p style="font-size: 11px; color: #9CA3AF; margin-top: 10px;">
				This is an automated email. Please do not reply to this message.
			</p>
		</div>
	`, b.brandName)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Email</title>
	<style>%s</style>
</head>
<body>
	<div class="container">
		%s
		<div class="content">
			%s
		</div>
		%s
	</div>
</body>
</html>
	`, b.styles(), b.header, strings.Join(b.content, "\n"), footer)
}

func (b *EmailBuilder) styles() string {
	return `
		body {
			font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
			line-height: 1.6;
			color: #1F2937;
			background-color: #F9FAFB;
			margin: 0;
			padding: 0;
		}
		.container {
			max-width: 600px;
			margin: 20px auto;
			background-color: #FFFFFF;
			border-radius: 8px;
			box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
			overflow: hidden;
		}
		.header {
			background-color: ` + b.brandColor + `;
			color: white;
			padding: 30px 20px;
			text-align: center;
		}
		.content {
			padding: 30px 20px;
		}
		.footer {
			text-align: center;
			padding: 20px;
			border-top: 1px solid #E5E7EB;
			color: #6B7280;
			font-size: 14px;
			background-color: #F9FAFB;
		}
		.section {
			margin-bottom: 25px;
		}
		.section-content {
			color: #4B5563;
		}
		h1, h2, h3 {
			margin: 0 0 10px 0;
		}
	`
}
