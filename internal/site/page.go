package site

import (
	"fmt"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/models"
)

// PageData is everything the landing page renders from.
type PageData struct {
	Theme    models.Theme
	Scenario *models.Scenario
	Carousel carousel.Snapshot
	Slides   []models.Slide
	Interval time.Duration
	Demo     []models.DemoMessage
	DemoOpen bool
	Joined   bool
	Year     int
}

type module struct {
	Name string
	Desc string
}

var modules = []module{
	{"Connect", "Real-time coordination in WhatsApp."},
	{"Wellness", "Support doctors & residents’ mental health."},
	{"Insights", "Analytics & trends for decision-makers."},
	{"Global", "Seamless collaboration across regions."},
	{"Voice", "Hands-free assistant for emergencies."},
	{"Flow", "Automate workflows, reduce friction."},
}

type milestone struct {
	Year  string
	Phase string
	Desc  string
}

var roadmap = []milestone{
	{"2025", "Build phase", "Functional prototype in development."},
	{"2025", "Pilot & feedback", "50+ real scenarios tested in clinical rotations."},
	{"2026", "Scale & expansion", "Multi-country deployments from day one."},
}

type quote struct {
	Text   string
	Author string
}

var testimonials = []quote{
	{"We’d have to test it and more, but it sounds potentially useful.", "Dr. Q — Neurosurgeon"},
	{"I would use it every day. Simple as that.", "Surgical Resident — Spain"},
	{"Feels like WhatsApp, but smarter for hospitals.", "Chief of Radiology — Mexico"},
}

type partner struct {
	Name string
	File string
}

var partners = []partner{
	{"Hospital General de México", "/assets/partners/hgm.png"},
	{"Facultad de Medicina", "/assets/partners/facmed.png"},
	{"UNAM", "/assets/partners/unam.png"},
}

var navLinks = []struct{ Label, Href string }{
	{"Modules", "#modules"},
	{"Roadmap", "#roadmap"},
	{"Testimonials", "#testimonials"},
	{"Founder", "#founder"},
	{"Waitlist", "#waitlist"},
}

// Page renders the full landing page.
func Page(data PageData) g.Node {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	dark := data.Theme.IsDark()

	return c.HTML5(c.HTML5Props{
		Title:       "Ayra — redefines hospital experience",
		Description: "One platform. Seamless workflows. Inside WhatsApp, Teams, Messenger & Slack.",
		Language:    "en",
		Head: []g.Node{
			Link(Rel("stylesheet"), Href("/static/ayra.css")),
			Script(Src("/static/ayra.js"), Defer()),
		},
		Body: []g.Node{
			c.Classes{"ayra": true, "theme-dark": dark, "theme-light": !dark},
			g.Attr("data-theme", string(data.Theme)),
			header(data.Theme),
			hero(data),
			contexts(data),
			modulesSection(),
			roadmapSection(),
			testimonialsSection(),
			founderSection(),
			partnersSection(),
			waitlistSection(data.Joined),
			footer(data.Year),
			floatingButtons(),
			demoModal(data.Demo, data.DemoOpen),
		},
	})
}

func header(theme models.Theme) g.Node {
	label := "☀️ Light"
	if !theme.IsDark() {
		label = "🌙 Dark"
	}
	return Header(Class("site-header"),
		Div(Class("container header-row"),
			A(Class("brand"), Href("/"), g.Text("Ayra")),
			Nav(Class("nav"),
				g.Map(navLinks, func(n struct{ Label, Href string }) g.Node {
					return A(Href(n.Href), g.Text(n.Label))
				}),
			),
			g.El("form", Method("post"), Action("/theme/toggle"), Class("theme-toggle"),
				Button(Type("submit"), Aria("label", "Toggle theme"), g.Text(label)),
			),
		),
	)
}

func hero(data PageData) g.Node {
	return Section(ID("top"), Class("hero"),
		Div(Class("container hero-grid"),
			Div(Class("hero-copy"),
				H1(
					g.Text("Ayra "),
					Span(Class("gradient"), g.Text("redefines hospital experience")),
				),
				P(Class("lead"), g.Text("One platform. Seamless workflows. Inside WhatsApp, Teams, Messenger & Slack. No new apps, no friction.")),
				Ul(Class("bullets"),
					Li(g.Text("• Find on-call staff instantly.")),
					Li(g.Text("• Check pharmacy stock in real time.")),
					Li(g.Text("• Broadcast hospital-wide updates in one tap.")),
					Li(g.Text("• Analytics that matter — right inside the chat.")),
				),
				Div(Class("cta-row"),
					A(Class("btn btn-primary"), Href("#waitlist"), g.Text("⚡ Request Access")),
					A(Class("btn btn-ghost"), Href("/?demo=1#demo"), g.Attr("data-open-demo", ""), g.Text("💬 Try Ayra demo")),
				),
			),
			phone(data.Scenario),
		),
	)
}

// phone renders the full script; ayra.js hides it and replays the bubbles
// from the playback websocket.
func phone(scenario *models.Scenario) g.Node {
	name := ""
	var steps []models.ChatStep
	if scenario != nil {
		name = scenario.Name
		steps = scenario.Steps
	}
	return Div(Class("phone"), g.Attr("data-scenario", name),
		Div(Class("notch")),
		Div(Class("chat"), ID("chat"),
			g.Map(steps, bubble),
		),
	)
}

func bubble(step models.ChatStep) g.Node {
	side := "in"
	if step.IsOutgoing() {
		side = "out"
	}
	if step.Typing {
		return Div(Class("bubble typing "+side), Span(), Span(), Span())
	}
	return Div(Class("bubble "+side),
		Span(Class("text"), g.Text(step.Text)),
		g.If(step.Timestamp != "" || step.Delivery != models.DeliveryNone,
			Span(Class("meta"),
				g.Text(step.Timestamp),
				g.If(step.IsOutgoing() && step.Delivery != models.DeliveryNone, checks(step.Delivery)),
			),
		),
	)
}

func checks(state models.DeliveryState) g.Node {
	switch state {
	case models.DeliverySent:
		return Span(Class("check"), g.Text(" ✓"))
	case models.DeliveryRead:
		return Span(Class("check read"), g.Text(" ✓✓"))
	default:
		return Span(Class("check"), g.Text(" ✓✓"))
	}
}

func contexts(data PageData) g.Node {
	snap := data.Carousel
	total := len(data.Slides)
	if total == 0 {
		return nil
	}
	prev := (snap.Index - 1 + total) % total
	next := (snap.Index + 1) % total
	interval := data.Interval
	if interval <= 0 {
		interval = carousel.DefaultInterval
	}

	// Every slide is rendered so the script can rotate them; the server
	// picks the visible one for clients without it.
	return Section(ID("contexts"), Class("contexts"),
		g.Attr("data-auto", fmt.Sprint(snap.Auto)),
		g.Attr("data-interval", fmt.Sprint(interval.Milliseconds())),
		Div(Class("container"),
			gradientH2("Built for every context"),
			g.Group(g.Map(data.Slides, func(s models.Slide) g.Node {
				return Div(Class("slide"),
					g.Attr("data-slide", s.Key),
					g.If(s.Key != snap.Slide.Key, g.Attr("hidden")),
					Img(Src(s.Image), Alt(s.Title)),
					H3(g.Text(s.Title)),
					P(g.Text(s.Caption)),
					g.If(s.Scenario != "",
						A(Class("btn btn-ghost"), Href("/?scenario="+s.Scenario+"#top"), g.Text("Play this chat")),
					),
				)
			})),
			Div(Class("slide-nav"),
				A(Class("btn"), Href(fmt.Sprintf("/?slide=%d#contexts", prev)), g.Attr("data-slide-step", "-1"), Aria("label", "Previous"), g.Text("←")),
				g.Group(g.Map(data.Slides, func(s models.Slide) g.Node {
					return A(
						c.Classes{"dot": true, "active": s.Key == snap.Slide.Key},
						Href("/?slide="+s.Key+"#contexts"),
						Aria("label", s.Title),
					)
				})),
				A(Class("btn"), Href(fmt.Sprintf("/?slide=%d#contexts", next)), g.Attr("data-slide-step", "1"), Aria("label", "Next"), g.Text("→")),
				autoplayToggle(snap.Auto),
			),
		),
	)
}

func autoplayToggle(auto bool) g.Node {
	label, text := "Resume autoplay", "Play"
	if auto {
		label, text = "Pause autoplay", "Pause"
	}
	return Button(Type("button"), Class("btn btn-ghost"), g.Attr("data-carousel-toggle"), Aria("label", label), g.Text(text))
}

func modulesSection() g.Node {
	return Section(ID("modules"), Class("modules center"),
		Div(Class("container"),
			gradientH2("One brand. Six modules."),
			P(Class("muted"), g.Text("Endless possibilities.")),
			Div(Class("grid six"),
				g.Map(modules, func(m module) g.Node {
					return Div(Class("card"),
						Img(Src("/assets/modules/"+strings.ToLower(m.Name)+".png"), Alt(m.Name+" logo"), Width("72"), Height("72")),
						H3(g.Text(m.Name)),
						P(Class("muted"), g.Text(m.Desc)),
					)
				}),
			),
		),
	)
}

func roadmapSection() g.Node {
	return Section(ID("roadmap"), Class("roadmap center"),
		Div(Class("container"),
			gradientH2("Where are we now?"),
			Div(Class("grid three"),
				g.Map(roadmap, func(m milestone) g.Node {
					return Div(Class("card"),
						Span(Class("year"), g.Text(m.Year)),
						H3(g.Text(m.Phase)),
						P(Class("muted"), g.Text(m.Desc)),
					)
				}),
			),
		),
	)
}

func testimonialsSection() g.Node {
	return Section(ID("testimonials"), Class("testimonials center"),
		Div(Class("container"),
			gradientH2("What clinicians say"),
			Div(Class("grid three"),
				g.Map(testimonials, func(q quote) g.Node {
					return Figure(Class("card quote"),
						BlockQuote(g.Text("“"+q.Text+"”")),
						FigCaption(Class("muted"), g.Text("— "+q.Author)),
					)
				}),
			),
		),
	)
}

func founderSection() g.Node {
	return Section(ID("founder"), Class("founder center"),
		Div(Class("container card"),
			Img(Class("avatar"), Src("/assets/founder.jpg"), Alt("Axel Salinas"), Width("180"), Height("180")),
			H3(Class("gradient"), g.Text("Meet the Founder")),
			P(
				g.Text("Axel is a medical student at "), Strong(g.Text("UNAM")),
				g.Text(", passionate about reimagining healthcare workflows. Experienced in "), Strong(g.Text("ML & Genomics")),
				g.Text(", he has participated in international competitions and trained through programs such as "),
				Em(g.Text("Harvard VIP, iGEM 2022")), g.Text(", and "), Em(g.Text("MIT Hacking Medicine")), g.Text("."),
			),
			Div(Class("cta-row"),
				A(Class("btn btn-ghost"), Href("https://github.com/axelsavrov"), Target("_blank"), Rel("noopener"),
					Img(Src("/assets/logos/github.png"), Alt("GitHub"), Width("24"), Height("24")), g.Text("GitHub")),
				A(Class("btn btn-ghost"), Href("https://www.linkedin.com/in/axeljsalinasvences"), Target("_blank"), Rel("noopener"),
					Img(Src("/assets/logos/linkedin.png"), Alt("LinkedIn"), Width("24"), Height("24")), g.Text("LinkedIn")),
			),
			P(Class("muted small"), g.Text("Ayra never touches sensitive patient information — privacy and security are at the core of everything we build.")),
		),
	)
}

func partnersSection() g.Node {
	return Section(Class("partners center"),
		Div(Class("container"),
			P(Class("muted upper"), g.Text("Trusted by early partners")),
			H4(g.Text("Collaborating with leading institutions to build real workflows.")),
			Div(Class("grid three"),
				g.Map(partners, func(p partner) g.Node {
					return Img(Src(p.File), Alt(p.Name), Width("140"), Height("80"))
				}),
			),
		),
	)
}

func waitlistSection(joined bool) g.Node {
	return Section(ID("waitlist"), Class("waitlist center"),
		Div(Class("container card narrow"),
			gradientH2("Get early access"),
			g.If(joined, P(Class("success"), g.Text("✅ Thanks! You’re on the list."))),
			g.If(!joined,
				g.El("form", Method("post"), Action("/waitlist"), Class("waitlist-form"),
					Input(Type("email"), Name("email"), Required(), Placeholder("Enter your email")),
					Button(Type("submit"), Class("btn btn-primary"), g.Text("Join")),
				),
			),
		),
	)
}

func footer(year int) g.Node {
	return Footer(Class("site-footer center"),
		Div(Class("muted"), g.Textf("© %d Ayra. All rights reserved.", year)),
	)
}

func floatingButtons() g.Node {
	return Div(Class("floating"),
		A(Class("btn btn-glass"), Href("#waitlist"), g.Text("Join the waitlist →")),
		A(Class("btn btn-glass"), Href("/?demo=1#demo"), g.Attr("data-open-demo", ""), g.Text("💬 Try Ayra demo")),
	)
}

func demoModal(messages []models.DemoMessage, open bool) g.Node {
	if len(messages) == 0 {
		messages = []models.DemoMessage{{Role: models.DemoRoleAyra, Content: demochat.Greeting}}
	}
	return Div(ID("demo"), c.Classes{"modal": true, "open": open}, g.Attr("role", "dialog"), Aria("label", "Ayra demo"),
		Div(Class("modal-card"),
			Div(Class("modal-head"),
				Strong(g.Text("Ayra demo")),
				A(Class("close"), Href("/#top"), g.Attr("data-close-demo", ""), Aria("label", "Close"), g.Text("✕")),
			),
			Div(Class("demo-log"), ID("demo-log"),
				g.Map(messages, func(m models.DemoMessage) g.Node {
					return Div(c.Classes{"msg": true, "user": m.Role == models.DemoRoleUser, "ayra": m.Role == models.DemoRoleAyra},
						Span(g.Text(m.Content)),
					)
				}),
			),
			g.El("form", Method("post"), Action("/demo"), Class("demo-form"), ID("demo-form"),
				Input(Name("q"), g.Attr("autocomplete", "off"), Placeholder(`Try: "Who is on call in Neurosurgery?"`)),
				Button(Type("submit"), Class("btn btn-primary"), g.Text("Send")),
			),
			Div(Class("suggestions"),
				g.Map(demochat.Suggestions, func(s string) g.Node {
					return Span(Class("chip"), g.Text(s))
				}),
			),
		),
	)
}

func gradientH2(text string) g.Node {
	return H2(Class("gradient"), g.Text(text))
}
