package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"weatherdash/internal/modules/weather/aggregate"
	"weatherdash/internal/modules/weather/locale"
	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/types"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Option is one entry of a preference selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type DashboardData struct {
	Tr *locale.Translation
	// GeolocationTimeoutMs bounds the browser's position request.
	GeolocationTimeoutMs int64
	Languages            []Option
	Units                []Option
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

type WeatherData struct {
	Tr          *locale.Translation
	View        aggregate.ViewModel
	CountryCode string
}

// RenderWeatherPartial executes only the weather panel into w.
func RenderWeatherPartial(w io.Writer, data *WeatherData) error {
	if dashboardTmpl == nil {
		return errors.New("weather template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/weather.html", data)
}

type SuggestionsData struct {
	Places []types.Place
}

func RenderSuggestionsPartial(w io.Writer, data *SuggestionsData) error {
	if dashboardTmpl == nil {
		return errors.New("suggestions template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/suggestions.html", data)
}

// NewsData is the view model for the news panel. Error replaces the items
// when the feed could not be loaded.
type NewsData struct {
	Tr    *locale.Translation
	Title string
	News  providers.News
	Error string
}

func RenderNewsPartial(w io.Writer, data *NewsData) error {
	if dashboardTmpl == nil {
		return errors.New("news template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/news.html", data)
}

// RenderErrorPartial renders a single user-facing message in place of a panel.
func RenderErrorPartial(w io.Writer, message string) error {
	if dashboardTmpl == nil {
		return errors.New("error template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/error.html", message)
}
