package contracts

type BalanceQuery struct {
	From    string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Context string `form:"context" binding:"omitempty,oneof=PERSONAL BUSINESS"`
}
