package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"nutribot/config"
	"nutribot/models"
	"nutribot/utils"
)

type EventType string

const (
	EventSetupStart         EventType = "setup_start"
	EventProfileFieldInput  EventType = "profile_field_input"
	EventMealInput          EventType = "meal_input"
	EventSubscriptionChoice EventType = "subscription_choice"
	EventPaymentResult      EventType = "payment_result"
	EventCancel             EventType = "cancel"
	EventStatsQuery         EventType = "stats_query"
	EventTimeoutTick        EventType = "timeout_tick"
)

// Event is one inbound user action, already decoded by the transport
// adapter. Only the fields relevant to the Type are set.
type Event struct {
	Type EventType `json:"type"`

	Value      string             `json:"value,omitempty"`       // profile field input
	Source     models.EntrySource `json:"source,omitempty"`      // meal input
	Payload    string             `json:"payload,omitempty"`     // photo data URI / transcript / text
	Months     int                `json:"months,omitempty"`      // subscription choice
	PaymentOK  bool               `json:"payment_ok,omitempty"`  // payment result
	PaymentRef string             `json:"payment_ref,omitempty"` // provider charge id
	Anchor     time.Time          `json:"anchor,omitempty"`      // stats query
	Direction  Direction          `json:"direction,omitempty"`   // stats query
	PageSize   int                `json:"page_size,omitempty"`   // stats query
}

// Response is what the transport renders back to the user: a message,
// the resulting dialog state, and whatever payload the event produced.
type Response struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	State      models.DialogState `json:"state"`
	FieldIndex int                `json:"field_index,omitempty"`

	Entry   *models.FoodEntry `json:"entry,omitempty"`
	Day     *DayAggregate     `json:"day,omitempty"`
	Dates   []string          `json:"dates,omitempty"`
	Invoice *PaymentInvoice   `json:"invoice,omitempty"`
	Until   *time.Time        `json:"subscribed_until,omitempty"`
}

const (
	CodeOK                  = "ok"
	CodeNoop                = "noop"
	CodeSetupStep           = "setup_step"
	CodeProfileSaved        = "profile_saved"
	CodeInvalidInput        = "invalid_input"
	CodeEntryRecorded       = "entry_recorded"
	CodeAnalysisInProgress  = "analysis_in_progress"
	CodeQuotaFreeLimit      = "quota_denied_free_limit"
	CodeQuotaExpired        = "quota_denied_subscription_expired"
	CodeRecognitionFailed   = "recognition_failed"
	CodeSubscriptionMenu    = "subscription_menu"
	CodeInvoiceCreated      = "invoice_created"
	CodeSubscriptionGranted = "subscription_granted"
	CodePaymentFailed       = "payment_not_confirmed"
	CodeCancelled           = "cancelled"
	CodeTimeoutReset        = "timeout_reset"
	CodeStats               = "stats"
	CodeInternalError       = "internal_error"
)

// DialogService is the per-user state machine. Every event for a user is
// handled under that user's lock; the lock is dropped while the external
// recognizer runs and the result is committed only if nobody moved the
// dialog in the meantime.
type DialogService struct {
	store      Store
	quota      *QuotaService
	entries    *EntryService
	calendar   *CalendarService
	payments   *PaymentService
	recognizer Recognizer
	settings   *config.Settings

	// Optional collaborators.
	Hub         *ProgressHub
	UploadPhoto func(dataURI, prefix string) (string, error)

	locks *userLocks
	now   func() time.Time
}

func NewDialogService(
	store Store,
	quota *QuotaService,
	entries *EntryService,
	calendar *CalendarService,
	payments *PaymentService,
	recognizer Recognizer,
	settings *config.Settings,
) *DialogService {
	return &DialogService{
		store:      store,
		quota:      quota,
		entries:    entries,
		calendar:   calendar,
		payments:   payments,
		recognizer: recognizer,
		settings:   settings,
		locks:      newUserLocks(),
		now:        time.Now,
	}
}

func (d *DialogService) HandleEvent(userID uint, ev Event) Response {
	lock := d.locks.lock(userID)
	unlocked := false
	unlock := func() {
		if !unlocked {
			unlocked = true
			lock.Unlock()
		}
	}
	relock := func() {
		if unlocked {
			lock.Lock()
			unlocked = false
		}
	}
	defer unlock()

	conv, wasReset, err := d.loadConversation(userID)
	if err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again."}
	}

	// Events that behave the same in every state.
	switch ev.Type {
	case EventCancel:
		return d.handleCancel(conv)
	case EventTimeoutTick:
		return d.handleTimeout(conv, wasReset)
	case EventStatsQuery:
		return d.handleStats(userID, conv, ev)
	}

	switch conv.State {
	case models.StateIdle:
		switch ev.Type {
		case EventSetupStart:
			return d.startSetup(conv)
		case EventMealInput:
			return d.handleMealInput(userID, conv, ev, unlock, relock)
		case EventSubscriptionChoice:
			return d.openSubscriptionMenu(userID, conv)
		}
	case models.StateAwaitingProfileField:
		if ev.Type == EventProfileFieldInput {
			return d.handleProfileField(userID, conv, ev)
		}
	case models.StateAwaitingMealInput:
		if ev.Type == EventMealInput {
			return Response{
				Code:    CodeAnalysisInProgress,
				Message: "Your previous meal is still being analyzed, one moment.",
				State:   conv.State,
			}
		}
	case models.StateAwaitingSubscription:
		if ev.Type == EventSubscriptionChoice {
			return d.chooseTariff(conv, ev)
		}
	case models.StateAwaitingPayment:
		if ev.Type == EventPaymentResult {
			return d.handlePaymentResult(userID, conv, ev)
		}
	}

	// Anything not matched above is an idempotent no-op.
	return Response{Code: CodeNoop, State: conv.State, FieldIndex: conv.FieldIndex}
}

// ---------- lifecycle helpers ----------

// loadConversation fetches the dialog record, lazily resetting it to
// idle when it sat in a non-idle state past the inactivity window.
func (d *DialogService) loadConversation(userID uint) (conv *models.ConversationState, wasReset bool, err error) {
	conv, err = d.store.ConversationByUser(userID)
	if err != nil {
		return nil, false, err
	}
	if conv.Stale(d.now(), d.settings.InactivityWindow) {
		if err := d.transition(conv, models.StateIdle, 0, nil); err != nil {
			return nil, false, err
		}
		wasReset = true
	}
	return conv, wasReset, nil
}

func (d *DialogService) transition(c *models.ConversationState, state models.DialogState, fieldIndex int, data map[string]string) error {
	c.State = state
	c.FieldIndex = fieldIndex
	c.SetData(data)
	c.EnteredAt = d.now()
	c.Revision++
	return d.store.SaveConversation(c)
}

func (d *DialogService) handleCancel(conv *models.ConversationState) Response {
	if conv.State == models.StateIdle {
		return Response{Code: CodeNoop, State: models.StateIdle}
	}
	if err := d.transition(conv, models.StateIdle, 0, nil); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}
	return Response{Code: CodeCancelled, Message: "Cancelled.", State: models.StateIdle}
}

func (d *DialogService) handleTimeout(conv *models.ConversationState, wasReset bool) Response {
	// loadConversation already reset a stale dialog; if the state is
	// still non-idle the window has not elapsed yet.
	if wasReset {
		return Response{Code: CodeTimeoutReset, State: models.StateIdle}
	}
	return Response{Code: CodeNoop, State: conv.State, FieldIndex: conv.FieldIndex}
}

// ---------- profile setup wizard ----------

type profileField struct {
	key    string
	prompt string
}

var profileFields = []profileField{
	{"sex", "Your sex? (male / female)"},
	{"age", "Your age, in years?"},
	{"weight", "Your weight, in kilograms?"},
	{"height", "Your height, in centimeters?"},
	{"activity", "Your activity level? (sedentary / light / moderate / active / very_active)"},
	{"goal", "Your goal? (lose / maintain / gain)"},
	{"targets", "Daily targets: reply 'skip' to calculate them for you, or send four numbers: calories protein fat carbs"},
}

func (d *DialogService) startSetup(conv *models.ConversationState) Response {
	if err := d.transition(conv, models.StateAwaitingProfileField, 0, map[string]string{}); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}
	return Response{
		Code:    CodeSetupStep,
		Message: profileFields[0].prompt,
		State:   models.StateAwaitingProfileField,
	}
}

func (d *DialogService) handleProfileField(userID uint, conv *models.ConversationState, ev Event) Response {
	idx := conv.FieldIndex
	if idx < 0 || idx >= len(profileFields) {
		// Should not happen; recover by restarting the wizard.
		return d.startSetup(conv)
	}
	field := profileFields[idx]

	normalized, err := validateProfileField(field.key, ev.Value)
	if err != nil {
		// Same state, same data: the user just gets re-prompted.
		return Response{
			Code:       CodeInvalidInput,
			Message:    fmt.Sprintf("That doesn't look right. %s", field.prompt),
			State:      conv.State,
			FieldIndex: idx,
		}
	}

	data := conv.Data()
	data[field.key] = normalized

	if idx+1 < len(profileFields) {
		if err := d.transition(conv, models.StateAwaitingProfileField, idx+1, data); err != nil {
			return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State, FieldIndex: idx}
		}
		return Response{
			Code:       CodeSetupStep,
			Message:    profileFields[idx+1].prompt,
			State:      models.StateAwaitingProfileField,
			FieldIndex: idx + 1,
		}
	}

	return d.finishSetup(userID, conv, data)
}

func validateProfileField(key, value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch key {
	case "sex":
		if v != string(models.SexMale) && v != string(models.SexFemale) {
			return "", utils.ErrInvalidProfileInput
		}
	case "age":
		n, err := strconv.Atoi(v)
		if err != nil || n < 10 || n > 120 {
			return "", utils.ErrInvalidProfileInput
		}
	case "weight", "height":
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return "", utils.ErrInvalidProfileInput
		}
	case "activity":
		switch models.ActivityLevel(v) {
		case models.ActivitySedentary, models.ActivityLight, models.ActivityModerate,
			models.ActivityActive, models.ActivityVeryActive:
		default:
			return "", utils.ErrInvalidProfileInput
		}
	case "goal":
		switch models.Goal(v) {
		case models.GoalLose, models.GoalMaintain, models.GoalGain:
		default:
			return "", utils.ErrInvalidProfileInput
		}
	case "targets":
		if v == "skip" {
			return "", nil // empty means "calculate for me"
		}
		parts := strings.Fields(v)
		if len(parts) != 4 {
			return "", utils.ErrInvalidProfileInput
		}
		nums := make([]float64, 4)
		for i, p := range parts {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return "", utils.ErrInvalidProfileInput
			}
			nums[i] = f
		}
		if err := utils.ValidateManualTargets(nums[0], nums[1], nums[2], nums[3]); err != nil {
			return "", err
		}
	}
	return v, nil
}

func (d *DialogService) finishSetup(userID uint, conv *models.ConversationState, data map[string]string) Response {
	p, err := d.store.ProfileByUser(userID)
	if err == ErrNotFound {
		p = &models.Profile{UserID: userID}
	} else if err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}

	age, _ := strconv.Atoi(data["age"])
	weight, _ := strconv.ParseFloat(data["weight"], 64)
	height, _ := strconv.ParseFloat(data["height"], 64)

	p.Sex = models.Sex(data["sex"])
	p.Age = age
	p.Weight = weight
	p.Height = height
	p.Activity = models.ActivityLevel(data["activity"])
	p.Goal = models.Goal(data["goal"])

	if raw := data["targets"]; raw != "" && raw != "skip" {
		parts := strings.Fields(raw)
		cal, _ := strconv.ParseFloat(parts[0], 64)
		prot, _ := strconv.ParseFloat(parts[1], 64)
		fat, _ := strconv.ParseFloat(parts[2], 64)
		carbs, _ := strconv.ParseFloat(parts[3], 64)
		p.ManualTargets = true
		p.TargetCalories, p.TargetProtein, p.TargetFat, p.TargetCarbs = cal, prot, fat, carbs
	} else {
		p.ManualTargets = false
	}

	if err := d.applyTargets(p); err != nil {
		return Response{
			Code:       CodeInvalidInput,
			Message:    "Those values don't add up, let's try the first step again. " + profileFields[0].prompt,
			State:      conv.State,
			FieldIndex: conv.FieldIndex,
		}
	}

	if err := d.store.SaveProfile(p); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}
	if err := d.transition(conv, models.StateIdle, 0, nil); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}

	return Response{
		Code: CodeProfileSaved,
		Message: fmt.Sprintf(
			"Profile saved. Daily targets: %.0f kcal, protein %.0f g, fat %.0f g, carbs %.0f g.",
			p.TargetCalories, p.TargetProtein, p.TargetFat, p.TargetCarbs,
		),
		State: models.StateIdle,
	}
}

// applyTargets is the single place targets are (re)derived. Manual
// targets are taken verbatim after range validation; otherwise they are
// recalculated from the demographics.
func (d *DialogService) applyTargets(p *models.Profile) error {
	if p.ManualTargets {
		return utils.ValidateManualTargets(p.TargetCalories, p.TargetProtein, p.TargetFat, p.TargetCarbs)
	}
	split, ok := d.settings.Splits[string(p.Goal)]
	if !ok {
		return utils.ErrInvalidProfileInput
	}
	t, err := utils.CalculateTargets(p.Sex, p.Age, p.Weight, p.Height, p.Activity, p.Goal, split)
	if err != nil {
		return err
	}
	p.TargetCalories, p.TargetProtein, p.TargetFat, p.TargetCarbs = t.Calories, t.Protein, t.Fat, t.Carbs
	return nil
}

// ---------- meal analysis ----------

func (d *DialogService) handleMealInput(userID uint, conv *models.ConversationState, ev Event, unlock, relock func()) Response {
	now := d.now()

	decision, reservation, err := d.quota.Authorize(userID, now)
	if err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}
	switch decision {
	case DeniedFreeLimitReached:
		return Response{
			Code:    CodeQuotaFreeLimit,
			Message: fmt.Sprintf("You've used all %d free analyses. Subscribe for unlimited access.", d.settings.FreeAnalysisLimit),
			State:   conv.State,
		}
	case DeniedSubscriptionExpired:
		return Response{
			Code:    CodeQuotaExpired,
			Message: "Your subscription has expired. Renew it to keep analyzing meals.",
			State:   conv.State,
		}
	}

	if err := d.transition(conv, models.StateAwaitingMealInput, 0, nil); err != nil {
		reservation.Release()
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}
	expected := conv.Revision

	// The recognizer can take a while; let other events for this user
	// through and re-validate before committing anything.
	unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	est, recErr := d.recognizer.Recognize(ctx, ev.Source, ev.Payload)
	cancel()
	relock()

	current, err := d.store.ConversationByUser(userID)
	if err != nil {
		reservation.Release()
		// Best effort: don't strand the dialog in awaiting_meal_input.
		_ = d.transition(conv, models.StateIdle, 0, nil)
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: models.StateIdle}
	}
	if current.Revision != expected {
		// A cancel, timeout or duplicate arrived while we were waiting.
		reservation.Release()
		return Response{Code: CodeCancelled, Message: "That analysis was cancelled.", State: current.State, FieldIndex: current.FieldIndex}
	}

	if recErr != nil {
		reservation.Release()
		if err := d.transition(current, models.StateIdle, 0, nil); err != nil {
			return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: current.State}
		}
		return Response{
			Code:    CodeRecognitionFailed,
			Message: "I couldn't recognize that meal. Try another photo or describe it in words.",
			State:   models.StateIdle,
		}
	}

	imageURL := ""
	if ev.Source == models.SourcePhoto && d.UploadPhoto != nil {
		url, upErr := d.UploadPhoto(ev.Payload, fmt.Sprintf("user-%d", userID))
		if upErr != nil {
			log.Printf("photo upload failed for user %d: %v", userID, upErr)
		} else {
			imageURL = url
		}
	}

	entry := &models.FoodEntry{
		EatenAt:     now,
		Source:      ev.Source,
		Description: est.Description,
		Calories:    est.Calories,
		Protein:     est.Protein,
		Fat:         est.Fat,
		Carbs:       est.Carbs,
		ImageURL:    imageURL,
	}
	recorded, err := d.entries.RecordEntry(userID, entry)
	if err != nil {
		reservation.Release()
		_ = d.transition(current, models.StateIdle, 0, nil)
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: models.StateIdle}
	}
	if err := reservation.Commit(); err != nil {
		log.Printf("quota commit failed for user %d: %v", userID, err)
	}
	if err := d.transition(current, models.StateIdle, 0, nil); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: current.State}
	}

	if d.Hub != nil {
		if day, err := d.entries.AggregateDay(userID, now); err == nil {
			d.Hub.BroadcastProgress(userID, day)
		}
	}

	remaining, _ := d.quota.RemainingFree(userID)
	return Response{
		Code: CodeEntryRecorded,
		Message: fmt.Sprintf(
			"%s: %.0f kcal (protein %.1f g, fat %.1f g, carbs %.1f g). Logged as %s. Free analyses left: %d.",
			recorded.Description, recorded.Calories, recorded.Protein, recorded.Fat, recorded.Carbs,
			recorded.MealType, remaining,
		),
		State: models.StateIdle,
		Entry: recorded,
	}
}

// ---------- subscription purchase ----------

func (d *DialogService) openSubscriptionMenu(userID uint, conv *models.ConversationState) Response {
	if err := d.transition(conv, models.StateAwaitingSubscription, 0, nil); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}

	remaining, _ := d.quota.RemainingFree(userID)
	var b strings.Builder
	fmt.Fprintf(&b, "Free analyses left: %d of %d.\nAvailable plans:\n", remaining, d.settings.FreeAnalysisLimit)
	for _, t := range d.settings.Tariffs {
		fmt.Fprintf(&b, "- %d mo. for %d RUB\n", t.Months, t.PriceRub)
	}
	b.WriteString("Reply with the number of months, or cancel.")

	return Response{Code: CodeSubscriptionMenu, Message: b.String(), State: models.StateAwaitingSubscription}
}

func (d *DialogService) chooseTariff(conv *models.ConversationState, ev Event) Response {
	invoice, ok := d.payments.Invoice(ev.Months)
	if !ok {
		return Response{
			Code:    CodeInvalidInput,
			Message: "No such plan. Reply with the number of months, or cancel.",
			State:   conv.State,
		}
	}

	data := map[string]string{
		"months": strconv.Itoa(invoice.Months),
		"ref":    invoice.Ref,
	}
	if err := d.transition(conv, models.StateAwaitingPayment, 0, data); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}

	return Response{
		Code:    CodeInvoiceCreated,
		Message: fmt.Sprintf("Pay %d RUB for %d mo. of unlimited analyses.", invoice.PriceRub, invoice.Months),
		State:   models.StateAwaitingPayment,
		Invoice: invoice,
	}
}

func (d *DialogService) handlePaymentResult(userID uint, conv *models.ConversationState, ev Event) Response {
	data := conv.Data()
	months, _ := strconv.Atoi(data["months"])

	if !ev.PaymentOK || months <= 0 {
		if err := d.transition(conv, models.StateIdle, 0, nil); err != nil {
			return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
		}
		return Response{
			Code:    CodePaymentFailed,
			Message: "The payment was not completed. No charge was made; you can try again anytime.",
			State:   models.StateIdle,
		}
	}

	ref := ev.PaymentRef
	if ref == "" {
		ref = data["ref"]
	}
	until, err := d.quota.GrantSubscription(userID, months, d.now(), ref)
	if err != nil {
		// Money was confirmed but the grant failed: leave the dialog
		// where it is so a retried callback can complete the grant.
		return Response{Code: CodeInternalError, Message: "Payment received, activation pending. Please contact support if this persists.", State: conv.State}
	}
	if err := d.transition(conv, models.StateIdle, 0, nil); err != nil {
		return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
	}

	return Response{
		Code:    CodeSubscriptionGranted,
		Message: fmt.Sprintf("Payment accepted! Unlimited analyses until %s.", until.Format("2006-01-02")),
		State:   models.StateIdle,
		Until:   &until,
	}
}

// ---------- statistics ----------

func (d *DialogService) handleStats(userID uint, conv *models.ConversationState, ev Event) Response {
	anchor := ev.Anchor
	if anchor.IsZero() {
		anchor = d.now()
	}

	if ev.Direction == "" {
		day, err := d.entries.AggregateDay(userID, anchor)
		if err != nil {
			return Response{Code: CodeInternalError, Message: "Something went wrong, please try again.", State: conv.State}
		}
		if day == nil {
			return Response{
				Code:    CodeStats,
				Message: fmt.Sprintf("No entries on %s.", dayStart(anchor).Format("2006-01-02")),
				State:   conv.State,
			}
		}
		return Response{Code: CodeStats, State: conv.State, Day: day}
	}

	dates, err := d.calendar.ListDays(userID, anchor, ev.Direction, ev.PageSize)
	if err != nil {
		return Response{Code: CodeInvalidInput, Message: "Unknown direction.", State: conv.State}
	}
	out := make([]string, 0, len(dates))
	for _, t := range dates {
		out = append(out, t.Format("2006-01-02"))
	}
	return Response{Code: CodeStats, State: conv.State, Dates: out}
}
