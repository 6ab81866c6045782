package http

import (
	"net/http"
	"strings"

	"tally/internal/core"
	"tally/internal/services"
)

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type addMemberRequest struct {
	Name string `json:"name"`
}

type memberResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type groupResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Members []memberResponse `json:"members"`
}

type groupExpenseRequest struct {
	Description string            `json:"description"`
	PayerID     string            `json:"payer_id"`
	Amount      string            `json:"amount"` // decimal
	Date        string            `json:"date"`   // YYYY-MM-DD
	Shares      map[string]string `json:"shares,omitempty"`
}

type groupExpenseResponse struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	PayerID     string           `json:"payer_id"`
	AmountCents int64            `json:"amount_cents"`
	Amount      string           `json:"amount"`
	Date        string           `json:"date"`
	SplitMode   string           `json:"split_mode"`
	Shares      map[string]int64 `json:"shares,omitempty"`
}

type settlementRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"` // decimal
	Date   string `json:"date"`   // YYYY-MM-DD
	Note   string `json:"note"`
}

type settlementResponse struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Note        string `json:"note,omitempty"`
}

type balanceResponse struct {
	MemberID     string `json:"member_id"`
	Name         string `json:"name"`
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
}

type transferResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type planResponse struct {
	Balances  []balanceResponse  `json:"balances"`
	Transfers []transferResponse `json:"transfers"`
	Settled   bool               `json:"settled"`
}

func toGroupResponse(g *core.Group) groupResponse {
	out := groupResponse{ID: g.ID, Name: g.Name, Members: make([]memberResponse, 0, len(g.Members))}
	for _, m := range g.Members {
		out.Members = append(out.Members, memberResponse{ID: m.ID, Name: m.Name})
	}
	return out
}

func toGroupExpenseResponse(e core.GroupExpense) groupExpenseResponse {
	return groupExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		PayerID:     e.PayerID,
		AmountCents: e.Amount.Cents,
		Amount:      e.Amount.String(),
		Date:        e.Date.String(),
		SplitMode:   string(e.Split.Mode),
		Shares:      e.Split.Shares,
	}
}

func toSettlementResponse(st core.Settlement) settlementResponse {
	return settlementResponse{
		ID:          st.ID,
		From:        st.FromID,
		To:          st.ToID,
		AmountCents: st.Amount.Cents,
		Amount:      st.Amount.String(),
		Date:        st.Date.String(),
		Note:        st.Note,
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := s.groups.CreateGroup(r.Context(), currentUserID(r), strings.TrimSpace(req.Name), req.Members)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), currentUserID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]groupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, toGroupResponse(&groups[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.GetGroup(r.Context(), currentUserID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.groups.AddMember(r.Context(), currentUserID(r), r.PathValue("id"), strings.TrimSpace(req.Name))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberResponse{ID: m.ID, Name: m.Name})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req groupExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	e, err := s.groups.AddExpense(r.Context(), currentUserID(r), r.PathValue("id"), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupExpenseResponse(*e))
}

func (req groupExpenseRequest) toInput() (services.ExpenseInput, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.ExpenseInput{}, err
	}

	in := services.ExpenseInput{
		Description: strings.TrimSpace(req.Description),
		PayerID:     req.PayerID,
		Amount:      core.Money{Cents: cents},
		Date:        date,
	}
	if req.Shares != nil {
		in.Shares = make(map[string]int64, len(req.Shares))
		for memberID, amount := range req.Shares {
			share, err := core.ParseDecimalToCents(amount)
			if err != nil {
				return services.ExpenseInput{}, err
			}
			in.Shares[memberID] = share
		}
	}
	return in, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.groups.ListExpenses(r.Context(), currentUserID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]groupExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toGroupExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSettlementPlan computes who pays whom to zero the group out. The
// plan is advisory; nothing is recorded until a settlement is POSTed.
func (s *Server) handleSettlementPlan(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	groupID := r.PathValue("id")

	g, err := s.groups.GetGroup(r.Context(), userID, groupID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	plan, err := s.groups.Plan(r.Context(), userID, groupID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := planResponse{
		Balances:  make([]balanceResponse, 0, len(g.Members)),
		Transfers: make([]transferResponse, 0, len(plan.Transfers)),
		Settled:   len(plan.Transfers) == 0,
	}
	for _, m := range g.Members {
		cents := plan.Balances[m.ID]
		out.Balances = append(out.Balances, balanceResponse{
			MemberID:     m.ID,
			Name:         m.Name,
			BalanceCents: cents,
			Balance:      core.FormatCents(cents),
		})
	}
	for _, tr := range plan.Transfers {
		out.Transfers = append(out.Transfers, transferResponse{
			From:        tr.From,
			To:          tr.To,
			AmountCents: tr.Amount.Cents,
			Amount:      tr.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	st, err := s.groups.RecordSettlement(r.Context(), currentUserID(r), r.PathValue("id"), services.SettlementInput{
		FromID: req.From,
		ToID:   req.To,
		Amount: core.Money{Cents: cents},
		Date:   date,
		Note:   strings.TrimSpace(req.Note),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(*st))
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.groups.ListSettlements(r.Context(), currentUserID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]settlementResponse, 0, len(settlements))
	for _, st := range settlements {
		out = append(out, toSettlementResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}
