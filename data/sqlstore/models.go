package sqlstore

import "github.com/mygamer123/tradingagents/data"

// NewsRow is one row of the news table.
type NewsRow struct {
	ID       uint   `gorm:"primaryKey"`
	Ticker   string `gorm:"size:16;not null;index:idx_news_ticker_date,priority:1"`
	Date     string `gorm:"size:10;not null;index:idx_news_ticker_date,priority:2"`
	Headline string `gorm:"not null"`
	Summary  string
}

func (NewsRow) TableName() string { return "news" }

// SentimentRow is one row of the insider_sentiment table.
type SentimentRow struct {
	ID     uint   `gorm:"primaryKey"`
	Ticker string `gorm:"size:16;not null;index:idx_sentiment_ticker_date,priority:1"`
	Date   string `gorm:"size:10;not null;index:idx_sentiment_ticker_date,priority:2"`
	Year   string `gorm:"size:4"`
	Month  string `gorm:"size:2"`
	Change float64
	MSPR   float64 `gorm:"column:mspr"`
}

func (SentimentRow) TableName() string { return "insider_sentiment" }

// TransactionRow is one row of the insider_transactions table.
type TransactionRow struct {
	ID               uint   `gorm:"primaryKey"`
	Ticker           string `gorm:"size:16;not null;index:idx_transactions_ticker_date,priority:1"`
	Date             string `gorm:"size:10;not null;index:idx_transactions_ticker_date,priority:2"`
	FilingDate       string `gorm:"size:10"`
	Name             string
	Change           float64
	Share            float64
	TransactionPrice float64
	TransactionCode  string `gorm:"size:4"`
}

func (TransactionRow) TableName() string { return "insider_transactions" }

// row converts between a table row and the record it stores.
type row[T any] interface {
	date() string
	record() T
}

func (r NewsRow) date() string { return r.Date }
func (r NewsRow) record() data.NewsItem {
	return data.NewsItem{Headline: r.Headline, Summary: r.Summary}
}

func (r SentimentRow) date() string { return r.Date }
func (r SentimentRow) record() data.InsiderSentiment {
	return data.InsiderSentiment{
		Year:   data.FlexString(r.Year),
		Month:  data.FlexString(r.Month),
		Change: r.Change,
		MSPR:   r.MSPR,
	}
}

func (r TransactionRow) date() string { return r.Date }
func (r TransactionRow) record() data.InsiderTransaction {
	return data.InsiderTransaction{
		FilingDate:       r.FilingDate,
		Name:             r.Name,
		Change:           r.Change,
		Share:            r.Share,
		TransactionPrice: r.TransactionPrice,
		TransactionCode:  r.TransactionCode,
	}
}

func newsRows(ticker string, in data.DateIndexed[data.NewsItem]) []NewsRow {
	var out []NewsRow
	for _, date := range in.Dates() {
		for _, n := range in[date] {
			out = append(out, NewsRow{Ticker: ticker, Date: date, Headline: n.Headline, Summary: n.Summary})
		}
	}
	return out
}

func sentimentRows(ticker string, in data.DateIndexed[data.InsiderSentiment]) []SentimentRow {
	var out []SentimentRow
	for _, date := range in.Dates() {
		for _, s := range in[date] {
			out = append(out, SentimentRow{
				Ticker: ticker, Date: date,
				Year: string(s.Year), Month: string(s.Month),
				Change: s.Change, MSPR: s.MSPR,
			})
		}
	}
	return out
}

func transactionRows(ticker string, in data.DateIndexed[data.InsiderTransaction]) []TransactionRow {
	var out []TransactionRow
	for _, date := range in.Dates() {
		for _, tr := range in[date] {
			out = append(out, TransactionRow{
				Ticker: ticker, Date: date,
				FilingDate: tr.FilingDate, Name: tr.Name,
				Change: tr.Change, Share: tr.Share,
				TransactionPrice: tr.TransactionPrice, TransactionCode: tr.TransactionCode,
			})
		}
	}
	return out
}
