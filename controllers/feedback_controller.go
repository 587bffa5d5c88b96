package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zafarani/feedback-server/config"
	"github.com/zafarani/feedback-server/dashboard"
	"github.com/zafarani/feedback-server/forms"
	"github.com/zafarani/feedback-server/models"
)

const dateLayout = "2006-01-02"

type submitResponseReq struct {
	Question string `json:"question"`
	// the dhow form predates the "question" key and still sends this one
	QuestionReference string  `json:"question_reference"`
	Rating            *int    `json:"rating"`
	Text              *string `json:"text"`
	YesNo             *bool   `json:"yes_no"`
	ParentSubmission  *string `json:"parent_submission"`
}

func (r submitResponseReq) identity() string {
	if r.Question != "" {
		return r.Question
	}
	return r.QuestionReference
}

type submitFeedbackReq struct {
	FormType   string `json:"form_type" binding:"required"`
	RideType   string `json:"ride_type"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
	// the dhow form sends the phone under this key
	Phone          string              `json:"phone"`
	ApartmentNo    string              `json:"apartment_no"`
	ArrivalDate    string              `json:"arrival_date"`
	DurationOfStay *int                `json:"duration_of_stay"`
	Responses      []submitResponseReq `json:"responses" binding:"required"`
}

func (r submitFeedbackReq) phone() string {
	if r.GuestPhone != "" {
		return r.GuestPhone
	}
	return r.Phone
}

// loadSchema fetches the active question set for a form category.
func loadSchema(formType string) (*forms.Schema, error) {
	var questions []models.Question
	err := config.DB.
		Where("form_type = ? AND parent_id IS NULL", formType).
		Order("position ASC, id ASC").
		Preload("SubQuestions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return forms.NewSchema(formType, questions), nil
}

// POST /api/v1/feedback/
func CreateFeedback(c *gin.Context) {
	var req submitFeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid payload: " + err.Error()})
		return
	}
	if !validFormType(req.FormType) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown form_type"})
		return
	}

	schema, err := loadSchema(req.FormType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not load questions"})
		return
	}

	// Rebuild the draft from the submitted responses. A response naming a
	// question outside the schema means the client's draft desynced from
	// the question set; that fails loudly instead of being dropped.
	draft := forms.NewDraft(schema)
	parentRefs := make(map[string]*string)
	for _, r := range req.Responses {
		identity := r.identity()
		q, ok := schema.Lookup(identity)
		if !ok {
			log.Printf("feedback submit: response for unknown question %q (form_type=%s)", identity, req.FormType)
			c.JSON(http.StatusConflict, gin.H{"detail": "Response references an unknown question: " + identity})
			return
		}
		switch {
		case q.Type == models.QuestionRating && r.Rating != nil:
			draft[identity].Answer = forms.RatingOf(*r.Rating)
		case q.Type == models.QuestionText && r.Text != nil:
			draft[identity].Answer = forms.TextOf(*r.Text)
		case q.Type == models.QuestionYesNo && r.YesNo != nil:
			draft[identity].Answer = forms.YesNoOf(*r.YesNo)
		}
		parentRefs[identity] = r.ParentSubmission
	}

	errs := forms.Validate(schema, draft, forms.Header{
		RideType:       req.RideType,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		GuestPhone:     req.phone(),
		ApartmentNo:    req.ApartmentNo,
		ArrivalDate:    req.ArrivalDate,
		DurationOfStay: req.DurationOfStay,
	})
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	var arrival *time.Time
	if req.FormType == models.FormVillage {
		t, err := time.Parse(dateLayout, req.ArrivalDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"arrival_date": "Invalid arrival date"}})
			return
		}
		arrival = &t
	}

	feedback := models.Feedback{
		Reference:      uuid.New().String(),
		FormType:       req.FormType,
		RideType:       req.RideType,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		GuestPhone:     req.phone(),
		ApartmentNo:    req.ApartmentNo,
		ArrivalDate:    arrival,
		DurationOfStay: req.DurationOfStay,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&feedback).Error; err != nil {
			return err
		}
		for _, identity := range schema.LeafOrder() {
			e := draft[identity]
			if !e.Answer.Answered() {
				continue
			}
			resp := models.Response{
				Reference:        uuid.New().String(),
				FeedbackID:       feedback.ID,
				QuestionSlug:     identity,
				ParentSubmission: parentRefs[identity],
			}
			switch e.Answer.Kind() {
			case models.QuestionRating:
				v, _ := e.Answer.Rating()
				resp.Rating = &v
			case models.QuestionText:
				v, _ := e.Answer.Text()
				resp.Text = &v
			case models.QuestionYesNo:
				v, _ := e.Answer.YesNo()
				resp.YesNo = &v
			}
			if err := tx.Create(&resp).Error; err != nil {
				return err
			}
			feedback.Responses = append(feedback.Responses, resp)
		}
		return nil
	})
	if err != nil {
		log.Printf("feedback submit: could not store feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to submit feedback"})
		return
	}

	c.JSON(http.StatusCreated, feedbackJSON(feedback))
}

// feedbackJSON renders a record the way the dashboard expects it, with
// the responses nested under "{form_type}_responses".
func feedbackJSON(f models.Feedback) gin.H {
	out := gin.H{
		"reference":  f.Reference,
		"form_type":  f.FormType,
		"created_at": f.CreatedAt,
	}
	if f.RideType != "" {
		out["ride_type"] = f.RideType
	}
	if f.GuestName != "" {
		out["guest_name"] = f.GuestName
	}
	if f.GuestEmail != "" {
		out["guest_email"] = f.GuestEmail
	}
	if f.GuestPhone != "" {
		out["guest_phone"] = f.GuestPhone
	}
	if f.FormType == models.FormVillage {
		out["apartment_no"] = f.ApartmentNo
		if f.ArrivalDate != nil {
			out["arrival_date"] = f.ArrivalDate.Format(dateLayout)
		}
		out["duration_of_stay"] = f.DurationOfStay
	}

	responses := make([]gin.H, 0, len(f.Responses))
	for _, r := range f.Responses {
		item := gin.H{
			"reference":         r.Reference,
			"question":          r.QuestionSlug,
			"parent_submission": r.ParentSubmission,
		}
		switch {
		case r.Rating != nil:
			item["rating"] = *r.Rating
		case r.Text != nil:
			item["text"] = *r.Text
		case r.YesNo != nil:
			item["yes_no"] = *r.YesNo
		}
		responses = append(responses, item)
	}
	out[f.FormType+"_responses"] = responses
	return out
}

// criteriaFromQuery reads the dashboard filter keys. The key names are
// part of the frontend contract and must not change.
func criteriaFromQuery(c *gin.Context) (dashboard.Criteria, bool) {
	crit := dashboard.Criteria{
		FormType:        c.Query("form_type"),
		RideType:        c.Query("ride_type"),
		GroupByFormType: c.Query("group_by_form_type") == "true",
	}
	if v := c.Query("date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return crit, false
		}
		crit.Date = &t
	}
	start, end := c.Query("start_date"), c.Query("end_date")
	if start != "" && end != "" {
		s, err1 := time.Parse(dateLayout, start)
		e, err2 := time.Parse(dateLayout, end)
		if err1 != nil || err2 != nil {
			return crit, false
		}
		crit.Start, crit.End = &s, &e
	}
	return crit, true
}

func listFeedback(c *gin.Context, todayByDefault bool) {
	crit, ok := criteriaFromQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid date filter"})
		return
	}
	if todayByDefault && crit.Date == nil && crit.Start == nil {
		now := time.Now().UTC()
		crit.Date = &now
	}

	var records []models.Feedback
	err := config.DB.
		Preload("Responses").
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not load feedback"})
		return
	}

	matched := dashboard.Filter(records, crit)

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid page"})
			return
		}
		if crit.GroupByFormType {
			matched = dashboard.Flatten(dashboard.Group(matched))
		}
		p := dashboard.Paginate(matched, page)
		items := make([]gin.H, 0, len(p.Items))
		for _, f := range p.Items {
			items = append(items, feedbackJSON(f))
		}
		c.JSON(http.StatusOK, gin.H{
			"results":     items,
			"page":        p.Number,
			"total_pages": p.TotalPages,
			"total_items": p.TotalItems,
		})
		return
	}

	if crit.GroupByFormType {
		grouped := dashboard.Group(matched)
		out := gin.H{}
		for _, ft := range dashboard.GroupOrder {
			bucket := make([]gin.H, 0, len(grouped[ft]))
			for _, f := range grouped[ft] {
				bucket = append(bucket, feedbackJSON(f))
			}
			out[ft] = bucket
		}
		c.JSON(http.StatusOK, out)
		return
	}

	out := make([]gin.H, 0, len(matched))
	for _, f := range matched {
		out = append(out, feedbackJSON(f))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/v1/feedback/list/ returns today's feedback unless a date filter says
// otherwise.
func ListFeedback(c *gin.Context) {
	listFeedback(c, true)
}

// GET /api/v1/feedback/all/ returns the unfiltered-by-date superset.
func AllFeedback(c *gin.Context) {
	listFeedback(c, false)
}
