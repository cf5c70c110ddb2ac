package widget

import "github.com/godilite/survey-table/internal/table"

const defaultTitle = "Customer Survey Data"

// Options configures a single widget.
type Options struct {
	Title            string
	PageSize         int
	EnablePagination bool
	EnableFiltering  bool
	EnableSorting    bool
	PersistState     bool
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Title:            defaultTitle,
		PageSize:         table.DefaultPageSize,
		EnablePagination: true,
		EnableFiltering:  true,
		EnableSorting:    true,
		PersistState:     true,
	}
}

func WithTitle(title string) Option {
	return func(o *Options) {
		if title != "" {
			o.Title = title
		}
	}
}

func WithPageSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.PageSize = size
		}
	}
}

func WithPagination(enabled bool) Option {
	return func(o *Options) { o.EnablePagination = enabled }
}

func WithFiltering(enabled bool) Option {
	return func(o *Options) { o.EnableFiltering = enabled }
}

func WithSorting(enabled bool) Option {
	return func(o *Options) { o.EnableSorting = enabled }
}

func WithPersistence(enabled bool) Option {
	return func(o *Options) { o.PersistState = enabled }
}
