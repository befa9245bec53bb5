package sqlinline

const QInsertDependency = `--sql a0d4fb4e-617d-48c6-815e-480988ce40e2
insert into task_dependencies (task_id, depends_on_id, created_at)
values ($1::uuid, $2::uuid, now());
`

const QDeleteDependency = `--sql aa52fa67-7fa4-40a9-a769-70c03844fe8a
delete from task_dependencies
where task_id = $1::uuid
  and depends_on_id = $2::uuid;
`

const QListDependenciesByProject = `--sql 2f5fc7fe-8d1c-419c-950a-efe42bf44622
select d.task_id::text, d.depends_on_id::text, d.created_at
from task_dependencies d
join tasks t on t.id = d.task_id
where t.project_id = $1::uuid
order by d.created_at asc;
`

const QListPrerequisites = `--sql ffd358a6-2260-4783-8cf0-ee6a81c47a3c
select ` + taskColumns + `
from task_dependencies d
join tasks t on t.id = d.depends_on_id
where d.task_id = $1::uuid
order by t.created_at asc;
`
