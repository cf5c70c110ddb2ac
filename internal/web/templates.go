package web

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Customer Survey Data</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2937; }
.sr-only { position: absolute; width: 1px; height: 1px; overflow: hidden; clip: rect(0 0 0 0); }
.customer-table-wrapper { margin-bottom: 3rem; }
.table-header { display: flex; justify-content: space-between; align-items: center; }
.table-stats { display: flex; gap: 1rem; color: #6b7280; }
.customer-table { width: 100%; border-collapse: collapse; }
.customer-table th, .customer-table td { padding: .5rem .75rem; border-bottom: 1px solid #e5e7eb; text-align: left; }
.sortable { cursor: pointer; }
.filter-dropdown { position: absolute; background: #fff; border: 1px solid #d1d5db; padding: .5rem; z-index: 10; }
.nps-score.promoter { color: #047857; }
.nps-score.passive { color: #b45309; }
.nps-score.detractor { color: #b91c1c; }
.pagination-btn.active { font-weight: bold; }
.table-alert, .error-state { color: #b91c1c; }
</style>
</head>
<body>
{{- range .Widgets}}
<section class="widget-container" id="{{.ID}}" data-widget-id="{{.ID}}">
{{.HTML}}
</section>
{{- end}}
<script>
(function () {
  function send(container, ev) {
    var id = container.dataset.widgetId;
    fetch("/widgets/" + encodeURIComponent(id) + "/events", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(ev)
    })
      .then(function (res) { return res.ok ? res.json() : null; })
      .then(function (frame) {
        if (!frame) { return; }
        container.innerHTML = frame.html;
        if (frame.focus) {
          var el = document.getElementById(frame.focus);
          if (el) { el.focus(); }
        }
      });
  }

  function target(el) {
    var t = { kind: el.dataset.kind };
    if (el.dataset.column) { t.column = el.dataset.column; }
    if (el.dataset.value !== undefined) { t.value = el.dataset.value; }
    if (el.dataset.page) { t.page = parseInt(el.dataset.page, 10); }
    return t;
  }

  document.addEventListener("click", function (e) {
    document.querySelectorAll("[data-widget-id]").forEach(function (container) {
      var el = container.contains(e.target) ? e.target.closest("[data-kind]") : null;
      if (el && !el.disabled) {
        send(container, { type: "click", target: target(el) });
        return;
      }
      var open = container.querySelector("[data-open-filter]");
      if (open && !(e.target.closest && e.target.closest(".filter-container"))) {
        send(container, { type: "click", target: { kind: "outside" } });
      }
    });
  });

  document.addEventListener("keydown", function (e) {
    var container = e.target.closest && e.target.closest("[data-widget-id]");
    if (!container) { return; }
    var el = e.target.closest("[data-kind]");
    if (e.key === "Escape") {
      send(container, { type: "keydown", key: e.key, target: el ? target(el) : { kind: "" } });
      return;
    }
    if (el && (el.dataset.kind === "sort-header" || el.dataset.kind === "filter-trigger") &&
        (e.key === "Enter" || e.key === " ")) {
      e.preventDefault();
      send(container, { type: "keydown", key: e.key, target: target(el) });
    }
  });
})();
</script>
</body>
</html>
`
