package widget

// widgetTemplates holds the html/template definitions for one table widget.
// The entry point is "widget".
const widgetTemplates = `
{{- define "widget" -}}
<div class="customer-table-wrapper" id="{{.ID}}-table" data-widget="{{.ID}}"{{if .OpenFilter}} data-open-filter="{{.OpenFilter}}"{{end}}>
{{template "header" .}}
<div class="table-container">
{{template "body" .}}
</div>
{{- if .Pagination}}
{{template "pagination" .Pagination}}
{{- end}}
<div class="sr-only" id="{{.ID}}-announcer" aria-live="polite" aria-atomic="true">{{.Announcement}}</div>
</div>
{{- end}}

{{- define "header" -}}
<div class="table-header">
  <div class="table-title-section">
    <h2 class="table-title">{{.Title}}</h2>
    <div class="table-stats">
      <div class="stat-item"><span>{{.Total}} Total Records</span></div>
      <div class="stat-item"><span>{{.Visible}} Visible</span></div>
      {{- if .ActiveFilters}}
      <div class="stat-item active-filters"><span>{{.ActiveFilters}} {{.ActiveFiltersLabel}}</span></div>
      {{- end}}
    </div>
  </div>
  <div class="table-actions">
    <button type="button" class="btn-secondary" data-kind="refresh" aria-label="Refresh table data">Refresh</button>
    {{- if .ActiveFilters}}
    <button type="button" class="btn-secondary" data-kind="clear-all" aria-label="Clear all filters">Clear Filters</button>
    {{- end}}
  </div>
</div>
{{- if and .Failed .Loaded}}
<div class="table-alert" role="alert">Could not refresh data. Showing the last loaded records.
  <button type="button" class="btn-link" data-kind="retry">Retry</button>
</div>
{{- else if .Stale}}
<div class="table-alert table-alert-stale" role="status">Survey source unavailable. Showing the last saved records.
  <button type="button" class="btn-link" data-kind="retry">Retry</button>
</div>
{{- end}}
{{- end}}

{{- define "body" -}}
{{- if and .Failed (not .Loaded)}}
<div class="error-state" role="alert">
  <div class="empty-content">
    <h3>Unable to load data</h3>
    <p>The survey data could not be loaded. Check your connection and try again.</p>
    <button type="button" class="btn-primary" data-kind="retry">Retry</button>
  </div>
</div>
{{- else if not .Loaded}}
<div class="loading-state" aria-busy="true"><p>Loading survey data...</p></div>
{{- else if eq .Visible 0}}
<div class="empty-state">
  <div class="empty-content">
  {{- if .HasFilters}}
    <h3>No matching records</h3>
    <p>Try adjusting your filters to see more results.</p>
    <button type="button" class="btn-primary" data-kind="clear-all">Clear Filters</button>
  {{- else}}
    <h3>No data available</h3>
    <p>Data will appear here when available.</p>
  {{- end}}
  </div>
</div>
{{- else}}
<table class="customer-table" role="table" aria-label="Customer survey data">
  <thead>
    <tr role="row">
    {{- range .Columns}}
      {{template "column" .}}
    {{- end}}
    </tr>
  </thead>
  <tbody>
  {{- range .Rows}}
    <tr class="table-row" role="row">
      <td class="customer-name" role="gridcell" dir="auto">{{.CustomerName}}</td>
      <td class="account-manager" role="gridcell" dir="auto">{{.AccountManager}}</td>
      <td role="gridcell"><span class="service-type" dir="auto">{{.ServiceType}}</span></td>
      <td class="completion-date" role="gridcell">{{.Date}}</td>
      <td role="gridcell">{{if .NPS}}<span class="nps-score {{.NPSClass}}">{{.NPS}}</span>{{else}}<span class="no-data">{{missing}}</span>{{end}}</td>
      <td role="gridcell">{{if .Satisfaction}}<span class="satisfaction-score">{{.Satisfaction}}/5</span>{{else}}<span class="no-data">{{missing}}</span>{{end}}</td>
    </tr>
  {{- end}}
  </tbody>
</table>
{{- end}}
{{- end}}

{{- define "column" -}}
<th class="table-header-cell{{if .Sortable}} sortable{{end}}{{if .Sorted}} sorted{{end}}" role="columnheader" data-column="{{.Key}}"
  {{- if .Sortable}} id="{{.SortID}}" aria-sort="{{.AriaSort}}" tabindex="0" data-kind="sort-header"{{end}}>
  <div class="header-content">
    <span class="header-label">{{.Label}}</span>
    {{- if .Sortable}}
    <span class="sort-indicator {{.SortIcon}}" aria-hidden="true"></span>
    {{- end}}
    {{- if .Filterable}}
    <div class="filter-container">
      <button type="button" id="{{.FilterID}}" class="filter-button{{if .FilterActive}} active{{end}}" data-kind="filter-trigger" data-column="{{.Key}}"
        aria-label="Filter {{.Label}}" aria-haspopup="dialog" aria-expanded="{{.Open}}">Filter</button>
      {{- if .Open}}
      <div class="filter-dropdown" role="dialog" aria-labelledby="{{.FilterID}}-title">
        <div class="filter-header">
          <h3 id="{{.FilterID}}-title">Select {{.Label}}</h3>
          <button type="button" class="filter-close" data-kind="filter-close" data-column="{{.Key}}" aria-label="Close filter">&times;</button>
        </div>
        <div class="filter-options" role="listbox" aria-multiselectable="true">
        {{- range .Options}}
          <label class="filter-option" role="option" aria-selected="{{.Selected}}">
            <input type="checkbox" id="{{.ID}}" value="{{.Value}}" data-kind="filter-option" data-column="{{$.Key}}" data-value="{{.Value}}"{{if .Selected}} checked{{end}}>
            <span class="option-text" dir="auto">{{.Text}}</span>
          </label>
        {{- else}}
          <p class="filter-empty">No values to filter by</p>
        {{- end}}
        </div>
        <div class="filter-actions">
          <button type="button" class="btn-link" data-kind="filter-clear" data-column="{{.Key}}">Clear</button>
          <button type="button" class="btn-link" data-kind="filter-cancel" data-column="{{.Key}}">Cancel</button>
          <button type="button" class="btn-primary btn-sm" data-kind="filter-apply" data-column="{{.Key}}">Apply</button>
        </div>
      </div>
      {{- end}}
    </div>
    {{- end}}
  </div>
</th>
{{- end}}

{{- define "pagination" -}}
<div class="pagination-container">
  <div class="pagination-info">Showing {{.First}}-{{.Last}} of {{.Total}} records</div>
  <nav class="pagination" aria-label="Table pagination">
    <button type="button" class="pagination-btn" data-kind="page" data-page="{{.Prev}}" aria-label="Previous page"{{if not .HasPrev}} disabled{{end}}>&lsaquo;</button>
    {{- range .Items}}
    {{- if .Ellipsis}}
    <span class="pagination-ellipsis">...</span>
    {{- else}}
    <button type="button" class="pagination-btn{{if .Active}} active{{end}}" data-kind="page" data-page="{{.Page}}" aria-label="Page {{.Page}}"{{if .Active}} aria-current="page"{{end}}>{{.Page}}</button>
    {{- end}}
    {{- end}}
    <button type="button" class="pagination-btn" data-kind="page" data-page="{{.Next}}" aria-label="Next page"{{if not .HasNext}} disabled{{end}}>&rsaquo;</button>
  </nav>
</div>
{{- end}}
`
