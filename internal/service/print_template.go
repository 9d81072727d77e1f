package service

import "strings"

// printTemplate frames editor content for printing. The stylesheet mirrors
// the editor's office look so exports match what the user sees.
const printTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Document</title>
<style>
body {
  font-family: 'Segoe UI', system-ui, -apple-system, BlinkMacSystemFont, 'Inter', 'Roboto', sans-serif;
  line-height: 1.6;
  color: #323130;
  font-size: 14px;
  margin: 40px;
  background: white;
}
h1, h2, h3, h4, h5, h6 {
  color: #323130;
  margin-top: 1.5em;
  margin-bottom: 0.5em;
}
p { margin-bottom: 1em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
table td, table th { border: 1px solid #D2D0CE; padding: 8px 12px; }
table th { background-color: #F3F2F1; font-weight: 600; }
blockquote { border-left: 3px solid #D2D0CE; margin-left: 0; padding-left: 1em; color: #605E5C; }
pre { white-space: pre-wrap; }
</style>
</head>
<body>
{{content}}
</body>
</html>`

// WrapPrintDocument places an HTML fragment into the print template.
func WrapPrintDocument(content string) string {
	return strings.Replace(printTemplate, "{{content}}", content, 1)
}
