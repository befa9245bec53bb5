package sqlinline

const QClaimSweepRun = `--sql 1c3b5544-1a5e-4c58-8366-072486444f96
insert into sweep_runs (job, period, ran_at)
values ($1::text, $2::text, now())
on conflict (job, period) do nothing;
`
