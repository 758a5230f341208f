package site

import (
	"bytes"
	"text/template"
)

var configScript = template.Must(template.New("config.js").Parse(`// Configuration for API endpoints
(function () {
  var config = {
    development: { apiBaseUrl: {{printf "%q" .Development}} },
    production: { apiBaseUrl: {{printf "%q" .Production}} }
  };
  var host = window.location.hostname;
  var isProduction = host !== 'localhost' && host !== '127.0.0.1';
  window.API_BASE_URL = (isProduction ? config.production : config.development).apiBaseUrl;
})();
`))

// ConfigScript renders the legacy frontend's config.js, which applies the
// same hostname rule as Select in the browser.
func (e APIEndpoints) ConfigScript() ([]byte, error) {
	var buf bytes.Buffer
	if err := configScript.Execute(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
