package apply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/scrape"
)

// State of the application flow machine.
type State string

const (
	StateLoggedOut      State = "logged_out"
	StateLoginFailed    State = "login_failed"
	StateLoggedIn       State = "logged_in"
	StateOnJobPage      State = "on_job_page"
	StateInFlow         State = "in_application_flow"
	StateAwaitingReview State = "awaiting_review"
	StateManualFallback State = "manual_fallback"
	StateExhausted      State = "exhausted"
)

// defaultStepBudget bounds the form-step loop. Multi-page applications have
// an unknown page count; the budget keeps the loop finite.
const defaultStepBudget = 10

// Flow affordance locators. There is deliberately no locator for the final
// submit action anywhere in this package: the controller detects that the
// application is ready and stops, it can never submit.
var (
	startAffordances = []string{
		"button.jobs-apply-button",
		"[data-control-name='jobdetails_topcard_inapply']",
		".jobs-apply-button--top-card",
	}

	submitReadyAffordance = []string{"button[aria-label='Submit application']"}
	continueAffordance    = []string{"button[aria-label='Continue to next step']"}
	reviewAffordance      = []string{"button[aria-label='Review your application']"}

	textInputs     = []string{"input[type='text'], input[type='email'], input[type='tel']"}
	questionGroups = []string{"fieldset"}
	selectWidgets  = []string{"select"}
)

// Session is the record of one controller invocation. It is owned by the
// invocation and discarded afterwards; nothing here is persisted.
type Session struct {
	JobURL string
	State  State

	// StepsCompleted has exactly one entry per application-flow iteration.
	StepsCompleted []string
	FilledFields   []string
	Errors         []string

	Screenshot string
	Message    string
}

// Controller drives a multi-step application form up to the human-review
// gate. It is a bounded state machine: every path terminates in
// AwaitingReview, ManualFallback, Exhausted or LoginFailed.
type Controller struct {
	page    browser.Page
	profile *Profile
	logger  *zap.Logger

	login    string
	password string

	budget         int
	screenshotPath string
}

// Option configures a Controller.
type Option func(*Controller)

// WithStepBudget overrides the default form-step budget.
func WithStepBudget(budget int) Option {
	return func(c *Controller) {
		if budget > 0 {
			c.budget = budget
		}
	}
}

// WithScreenshotPath sets where the review-gate screenshot is written.
func WithScreenshotPath(path string) Option {
	return func(c *Controller) { c.screenshotPath = path }
}

func NewController(page browser.Page, profile *Profile, login, password string, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		page:           page,
		profile:        profile,
		logger:         logger,
		login:          login,
		password:       password,
		budget:         defaultStepBudget,
		screenshotPath: "application_preview.png",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run advances the flow for one job URL until a terminal state. The review
// and fallback states block until the human closes the surface; that wait has
// no timeout on purpose, a pending human-reviewed submission is never
// cancelled automatically.
func (c *Controller) Run(ctx context.Context, jobURL string) *Session {
	session := &Session{JobURL: jobURL, State: StateLoggedOut}

	if err := c.doLogin(ctx); err != nil {
		// Login is never retried: a challenge or bad credentials need
		// the human, not another attempt.
		session.State = StateLoginFailed
		session.Errors = append(session.Errors, err.Error())
		session.Message = "login failed"
		return session
	}
	session.State = StateLoggedIn
	c.logger.Info("logged in")

	if err := c.openJobPage(jobURL); err != nil {
		session.Errors = append(session.Errors, err.Error())
		session.Message = "opening job page failed"
		return session
	}
	session.State = StateOnJobPage
	c.logger.Info("opened job page", zap.String("url", jobURL))

	start := c.page.Find(startAffordances...)
	if start == nil || !start.Visible() {
		return c.manualFallback(session)
	}

	if err := start.Click(); err != nil {
		session.Errors = append(session.Errors, fmt.Sprintf("start application: %v", err))
		return c.manualFallback(session)
	}
	session.State = StateInFlow
	c.logger.Info("started application flow")
	c.page.Wait(2 * time.Second)
	scrape.DismissConsent(c.page)

	for step := 0; step < c.budget; step++ {
		c.fillFields(session)
		c.page.Wait(time.Second)

		if submit := c.page.Find(submitReadyAffordance...); submit != nil && submit.Visible() {
			session.StepsCompleted = append(session.StepsCompleted, fmt.Sprintf("step %d: submit-ready detected", step+1))
			return c.awaitReview(session)
		}

		if next := c.page.Find(continueAffordance...); next != nil && next.Visible() {
			if err := next.Click(); err != nil {
				session.Errors = append(session.Errors, fmt.Sprintf("continue: %v", err))
			}
			session.StepsCompleted = append(session.StepsCompleted, fmt.Sprintf("step %d: advanced", step+1))
			c.logger.Info("advanced to next step", zap.Int("step", step+1))
			c.page.Wait(2 * time.Second)
			continue
		}

		if review := c.page.Find(reviewAffordance...); review != nil && review.Visible() {
			if err := review.Click(); err != nil {
				session.Errors = append(session.Errors, fmt.Sprintf("review: %v", err))
			}
			session.StepsCompleted = append(session.StepsCompleted, fmt.Sprintf("step %d: reached review page", step+1))
			c.logger.Info("reached review page", zap.Int("step", step+1))
			c.page.Wait(2 * time.Second)
			continue
		}

		// No recognized affordance: a no-op wait that still consumes
		// the budget.
		session.StepsCompleted = append(session.StepsCompleted, fmt.Sprintf("step %d: no recognized affordance", step+1))
		c.page.Wait(time.Second)
	}

	session.State = StateExhausted
	session.Message = "step budget exhausted - surface left open for manual completion"
	c.logger.Warn("step budget exhausted", zap.Int("budget", c.budget))
	c.waitForHuman()

	return session
}

func (c *Controller) doLogin(ctx context.Context) error {
	if err := scrape.Login(c.page, c.login, c.password); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Controller) openJobPage(jobURL string) error {
	if err := c.page.Goto(jobURL); err != nil {
		return fmt.Errorf("open job page: %w", err)
	}
	c.page.Wait(3 * time.Second)

	// Single attempt; a stubborn interstitial never blocks progress.
	if scrape.DismissConsent(c.page) {
		c.logger.Debug("dismissed consent interstitial")
	}

	return nil
}

// fillFields fills recognized profile fields and answers question widgets.
// Filling is idempotent per field: a field that already holds a non-empty
// value is never overwritten.
func (c *Controller) fillFields(session *Session) {
	for _, input := range c.page.FindAll(textInputs...) {
		if !input.Visible() {
			continue
		}

		fieldName := firstNonEmpty(
			input.Attr("aria-label"),
			input.Attr("placeholder"),
			input.Attr("name"),
		)

		value := c.profile.FieldValue(fieldName)
		if value == "" || input.Value() != "" {
			continue
		}

		if err := input.Fill(value); err != nil {
			session.Errors = append(session.Errors, fmt.Sprintf("fill %q: %v", fieldName, err))
			continue
		}
		session.FilledFields = append(session.FilledFields, fieldName)
	}

	c.answerQuestionGroups(session)
	c.answerSelects(session)
}

// answerQuestionGroups handles radio-button question groups: the question is
// the group legend, the answer picks the option whose label matches.
func (c *Controller) answerQuestionGroups(session *Session) {
	for _, group := range c.page.FindAll(questionGroups...) {
		if !group.Visible() {
			continue
		}

		legend := group.Find("legend", "span[aria-hidden='true']")
		if legend == nil {
			continue
		}

		answer, ok := c.answers().Answer(legend.Text())
		if !ok {
			continue
		}

		for _, label := range group.FindAll("label") {
			if !matchesAnswer(label.Text(), answer) {
				continue
			}

			input := label.Find("input[type='radio']")
			if input != nil && input.Value() != "" && input.Attr("checked") != "" {
				break // already answered, never overwrite
			}

			if err := label.Click(); err != nil {
				session.Errors = append(session.Errors, fmt.Sprintf("answer %q: %v", legend.Text(), err))
				break
			}
			session.FilledFields = append(session.FilledFields, "radio: "+legend.Text())
			break
		}
	}
}

// answerSelects handles dropdown questions the same way.
func (c *Controller) answerSelects(session *Session) {
	for _, sel := range c.page.FindAll(selectWidgets...) {
		if !sel.Visible() {
			continue
		}

		question := firstNonEmpty(sel.Attr("aria-label"), sel.Attr("name"))
		answer, ok := c.answers().Answer(question)
		if !ok {
			continue
		}

		if sel.Value() != "" {
			continue // already answered
		}

		for _, option := range sel.FindAll("option") {
			if !matchesAnswer(option.Text(), answer) {
				continue
			}
			if err := option.Click(); err != nil {
				session.Errors = append(session.Errors, fmt.Sprintf("select %q: %v", question, err))
				break
			}
			session.FilledFields = append(session.FilledFields, "select: "+question)
			break
		}
	}
}

func (c *Controller) answers() *Answers {
	if c.profile != nil && c.profile.Answers != nil {
		return c.profile.Answers
	}
	return DefaultAnswers()
}

// manualFallback is the terminal state for sites without a recognized
// automated flow: the surface stays open for the human to finish.
func (c *Controller) manualFallback(session *Session) *Session {
	session.State = StateManualFallback
	session.Message = "no automated application flow - surface left open for manual completion"
	c.logger.Info("manual application required",
		zap.String("url", session.JobURL),
		zap.String("hint", "complete the application in the browser, then close it"),
	)
	c.waitForHuman()
	return session
}

// awaitReview is the review gate: a screenshot is captured and the machine
// halts until the human acts. The controller never submits.
func (c *Controller) awaitReview(session *Session) *Session {
	session.State = StateAwaitingReview
	session.Message = "application ready - review required before submitting"

	if err := c.page.Screenshot(c.screenshotPath); err != nil {
		session.Errors = append(session.Errors, fmt.Sprintf("screenshot: %v", err))
	} else {
		session.Screenshot = c.screenshotPath
	}

	c.logger.Info("stopping for human review",
		zap.String("url", session.JobURL),
		zap.String("screenshot", session.Screenshot),
		zap.String("hint", "review the filled form and submit it yourself, then close the browser"),
	)
	c.waitForHuman()

	return session
}

// waitForHuman blocks until the surface is closed. Intentionally unbounded.
func (c *Controller) waitForHuman() {
	for !c.page.Closed() {
		c.page.Wait(2 * time.Second)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func matchesAnswer(label, answer string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	answer = strings.ToLower(strings.TrimSpace(answer))
	if label == "" || answer == "" {
		return false
	}
	return strings.Contains(label, answer) || strings.Contains(answer, label)
}
