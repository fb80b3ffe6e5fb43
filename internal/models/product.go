package models

// ProductRecord is one extracted search result. Optional fields are
// pointers so that a missing node stays null instead of degrading to a
// zero value; a product with no reviews has ReviewsCount == nil, not 0.
type ProductRecord struct {
	ASIN              string      `json:"asin"`
	Title             string      `json:"title"`
	Brand             *string     `json:"brand"`
	ProductURL        string      `json:"productUrl"`
	ImageURL          *string     `json:"imageUrl"`
	Price             *float64    `json:"price"`
	PriceText         *string     `json:"priceText"`
	OriginalPriceText *string     `json:"originalPriceText"`
	Currency          *string     `json:"currency"`
	Rating            *float64    `json:"rating"`
	ReviewsCount      *int        `json:"reviewsCount"`
	IsPrime           bool        `json:"isPrime"`
	IsSponsored       bool        `json:"isSponsored"`
	Badges            []string    `json:"badges"`
	Keyword           string      `json:"keyword"`
	Country           Marketplace `json:"country"`
	PageIndex         int         `json:"pageIndex"`
	CategoryPath      []string    `json:"categoryPath,omitempty"`
	FeatureBullets    []string    `json:"featureBullets,omitempty"`
}
